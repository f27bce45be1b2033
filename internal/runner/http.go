package runner

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
	"github.com/unkn0wn-root/rdscript/internal/eval"
	"github.com/unkn0wn-root/rdscript/internal/telemetry"
)

type Options struct {
	Timeout            time.Duration
	FollowRedirects    bool
	InsecureSkipVerify bool
	ProxyURL           string
}

// HTTPStrategy sends requests with net/http. Responses that declare a JSON
// content type come back prettified, highlighted when color is on.
type HTTPStrategy struct {
	client    *http.Client
	telemetry telemetry.Instrumenter
	colored   bool
}

func NewHTTPStrategy(opts Options) (*HTTPStrategy, error) {
	client, err := buildHTTPClient(opts)
	if err != nil {
		return nil, err
	}
	return &HTTPStrategy{client: client, telemetry: telemetry.Noop()}, nil
}

// SetTelemetry configures the instrumenter wrapping each roundtrip. Passing
// nil restores the no-op implementation.
func (s *HTTPStrategy) SetTelemetry(instr telemetry.Instrumenter) {
	if instr == nil {
		instr = telemetry.Noop()
	}
	s.telemetry = instr
}

func (s *HTTPStrategy) SetColor(enabled bool) {
	s.colored = enabled
}

func (s *HTTPStrategy) RunRequest(
	ctx context.Context,
	item eval.RequestItem,
) (body string, err error) {
	var reader io.Reader
	if item.Body != nil {
		reader = strings.NewReader(*item.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(item.Method), item.URL, reader)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeHTTP, err, "build request")
	}
	for _, header := range item.Headers {
		httpReq.Header.Set(header.Name, header.Value)
	}

	spanCtx, requestSpan := s.telemetry.Start(httpReq.Context(), telemetry.RequestStart{
		Name:        item.Name,
		HTTPRequest: httpReq,
	})
	httpReq = httpReq.WithContext(spanCtx)

	statusCode := 0
	defer func() {
		requestSpan.End(telemetry.RequestResult{Err: err, StatusCode: statusCode})
	}()

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeHTTP, err, "perform request")
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = errdef.Wrap(errdef.CodeHTTP, closeErr, "close response body")
		}
	}()
	statusCode = httpResp.StatusCode

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeHTTP, err, "read response body")
	}

	if httpResp.StatusCode >= 400 {
		return "", errdef.New(
			errdef.CodeHTTP,
			"%s: status code %d: %s %s",
			item.URL,
			httpResp.StatusCode,
			http.StatusText(httpResp.StatusCode),
			strings.TrimSpace(string(raw)),
		)
	}

	if isJSONContentType(httpResp.Header.Get("Content-Type")) {
		return renderJSON(raw, s.colored)
	}
	return string(raw), nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func buildHTTPClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeHTTP, err, "parse proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = insecureTLSConfig()
		// a custom TLS config turns off the automatic h2 upgrade
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, errdef.Wrap(errdef.CodeHTTP, err, "enable http2")
		}
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Transport: transport, Jar: jar}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}
