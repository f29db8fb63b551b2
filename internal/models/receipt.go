package models

import "time"

// ReceiptData describes a payment receipt file after it has been hosted.
type ReceiptData struct {
	URL        string    `json:"url" yaml:"url"`
	DeleteURL  string    `json:"deleteUrl,omitempty" yaml:"deleteUrl,omitempty"`
	FileName   string    `json:"fileName" yaml:"fileName"`
	FileSize   int64     `json:"fileSize" yaml:"fileSize"`
	MIMEType   string    `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
}

// ProcessedPDF is the summary returned after a receipt PDF has been read
// and accepted.
type ProcessedPDF struct {
	Success     bool   `json:"success"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	PreviewText string `json:"previewText"`
	IsTelebirr  bool   `json:"isTelebirr"`
}
