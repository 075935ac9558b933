package transfer

type MetaError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type MetaIDResponse struct {
	ID    string     `json:"id"`
	Error *MetaError `json:"error,omitempty"`
}

type MetaContainerStatus struct {
	ID         string     `json:"id"`
	StatusCode string     `json:"status_code"`
	Status     string     `json:"status"`
	Error      *MetaError `json:"error,omitempty"`
}

type ReelUploadStart struct {
	VideoID   string     `json:"video_id"`
	UploadURL string     `json:"upload_url"`
	Error     *MetaError `json:"error,omitempty"`
}

type ReelVideoStatus struct {
	Status struct {
		VideoStatus     string `json:"video_status"`
		ProcessingPhase struct {
			Status string `json:"status"`
		} `json:"processing_phase"`
	} `json:"status"`
	Error *MetaError `json:"error,omitempty"`
}
