package clients

import "time"

const (
	INITIAL_BACKOFF = 500 * time.Millisecond
	MAX_BACKOFF     = 8 * time.Second
	USER_AGENT      = "newsmood-analyzer/1.0 (+https://github.com/spacesedan/newsmood)"
)
