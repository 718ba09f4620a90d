package queue

// ThumbnailPayload identifies the image a generateImageThumbnail job
// should process. Both ids are required; the worker rejects the job
// otherwise.
type ThumbnailPayload struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// WelcomePayload identifies the newly registered user to greet.
type WelcomePayload struct {
	UserID string `json:"userId"`
}
