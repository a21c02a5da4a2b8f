// Package callback receives the OAuth2 redirect on a loopback address, so
// the operator does not have to copy the code out of the browser.
package callback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/brizzai/subcount-bot/internal/auth/constants"
	"github.com/brizzai/subcount-bot/internal/errs"
	"github.com/brizzai/subcount-bot/internal/utils"
	"go.uber.org/zap"
)

// shutdownTimeout is the maximum time to wait for the listener to close
const shutdownTimeout = 5 * time.Second

// Server is a one-shot redirect receiver. It implements auth.Prompter.
type Server struct {
	redirectURL *url.URL
	out         io.Writer
	logger      *zap.Logger
}

// IsLoopback reports whether redirectURL points at this machine over plain HTTP
func IsLoopback(redirectURL string) bool {
	u, err := url.Parse(redirectURL)
	if err != nil || u.Scheme != "http" {
		return false
	}
	if u.Hostname() == "localhost" {
		return true
	}
	ip := net.ParseIP(u.Hostname())
	return ip != nil && ip.IsLoopback()
}

// NewServer creates a receiver for redirectURL, which must be a loopback URL
func NewServer(redirectURL string, out io.Writer, logger *zap.Logger) (*Server, error) {
	if !IsLoopback(redirectURL) {
		return nil, errs.E(errs.KindConfig, "twitter.redirect_url", fmt.Errorf("%q is not a loopback http URL", redirectURL))
	}
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, errs.E(errs.KindConfig, "twitter.redirect_url", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return &Server{redirectURL: u, out: out, logger: logger.Named("callback")}, nil
}

type result struct {
	code string
	err  error
}

// PromptCode shows authURL, listens on the redirect address and returns the
// code of the first redirect carrying the expected state
func (s *Server) PromptCode(ctx context.Context, authURL, state string) (string, error) {
	listener, err := net.Listen("tcp", s.redirectURL.Host)
	if err != nil {
		return "", errs.IO("listen for authorization callback", err)
	}

	results := make(chan result, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(s.redirectURL.Path, s.handleCallback(state, results))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	// Channel for server errors
	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Callback server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("Waiting for authorization callback", zap.String("address", listener.Addr().String()))
	if _, err := fmt.Fprintf(s.out, "Browse to: %s\nWaiting for the redirect to %s\n", authURL, s.redirectURL); err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errChan:
		return "", errs.IO("serve authorization callback", err)
	case r := <-results:
		return r.code, r.err
	}
}

// handleCallback answers the browser and forwards the outcome. Requests
// with a wrong state are rejected without ending the wait.
func (s *Server) handleCallback(state string, results chan<- result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query()
		if query.Get(constants.CallbackStateParam) != state {
			s.logger.Warn("Ignoring callback with unexpected state")
			utils.WriteError(w, "invalid_request", "State does not match", http.StatusBadRequest)
			return
		}

		if providerErr := query.Get(constants.CallbackErrorParam); providerErr != "" {
			description := query.Get("error_description")
			utils.WriteError(w, providerErr, description, http.StatusBadRequest)
			send(results, result{err: errs.Protocol("authorization callback", fmt.Errorf("%s: %s", providerErr, description))})
			return
		}

		code := query.Get(constants.CallbackCodeParam)
		if code == "" {
			utils.WriteError(w, "invalid_request", "Code is required", http.StatusBadRequest)
			return
		}

		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "authorized",
			"message": "Authorization received, you can close this window.",
		})
		send(results, result{code: code})
	}
}

// send delivers only the first outcome
func send(results chan<- result, r result) {
	select {
	case results <- r:
	default:
	}
}
