package httpx

import "time"

type ClientOptions struct {
	BaseURL     string
	Timeout     time.Duration
	Headers     map[string]string
	Signer      RequestSigner
	Now         func() time.Time
	RestyConfig func(RestClient)
}

type ClientOption func(*ClientOptions)

func defaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout: 10 * time.Second,
		Headers: map[string]string{"Content-Type": "application/json", "Accept": "application/json"},
		Now:     time.Now,
	}
}

func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

func WithClientTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		if len(headers) == 0 {
			return
		}
		o.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithSigner signs every outgoing request with an Authorization header
// computed over the Date header.
func WithSigner(s RequestSigner) ClientOption {
	return func(o *ClientOptions) {
		if s != nil {
			o.Signer = s
		}
	}
}

// WithClock overrides the time source used for the signed Date header.
func WithClock(now func() time.Time) ClientOption {
	return func(o *ClientOptions) {
		if now != nil {
			o.Now = now
		}
	}
}

func WithRestyConfig(fn func(RestClient)) ClientOption {
	return func(o *ClientOptions) {
		o.RestyConfig = fn
	}
}
