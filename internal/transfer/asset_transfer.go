package transfer

// UploadedAsset describes a stored artifact: the object key, the
// publicly fetchable URL handed to platform upload sessions, and the
// detected content type.
type UploadedAsset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}
