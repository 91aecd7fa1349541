package gallery

import "strings"

// Image is a gallery entry. The record lives in DynamoDB; the bytes live in
// S3 under ObjectKey and are served through presigned URLs.
type Image struct {
	ID        string `dynamodbav:"id" json:"id"`
	Title     string `dynamodbav:"title" json:"title"`
	Caption   string `dynamodbav:"caption" json:"caption,omitempty"`
	ObjectKey string `dynamodbav:"objectKey" json:"-"`
	URL       string `dynamodbav:"-" json:"url,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

func (i *Image) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}
