package receipt

// ExtractField applies the default rules for f to text. The text is expected
// to be normalized already; Extract does that for whole receipts.
func ExtractField(text string, f Field) Value {
	return DefaultRules[f].Apply(text)
}

// Extractor assembles receipt records. The zero value is not usable; build
// one with NewExtractor.
type Extractor struct {
	rules           map[Field]RuleSet
	defaultReceiver string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDefaultReceiverAccount overrides the account used when no receiver
// rule matches. An empty account disables the fallback.
func WithDefaultReceiverAccount(account string) Option {
	return func(e *Extractor) { e.defaultReceiver = account }
}

// WithRules replaces the rule set of individual fields.
func WithRules(rules map[Field]RuleSet) Option {
	return func(e *Extractor) {
		merged := make(map[Field]RuleSet, len(e.rules))
		for f, rs := range e.rules {
			merged[f] = rs
		}
		for f, rs := range rules {
			merged[f] = rs
		}
		e.rules = merged
	}
}

// NewExtractor returns an Extractor using DefaultRules and
// DefaultReceiverAccount unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{rules: DefaultRules, defaultReceiver: DefaultReceiverAccount}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Field applies the extractor's rules for f to normalized text.
func (e *Extractor) Field(text string, f Field) Value {
	return e.rules[f].Apply(text)
}
