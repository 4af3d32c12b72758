package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"unicode/utf8"
)

// Kind classifies a failed call.
type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindDNS
	KindRefused
	KindUnreachable
	KindCanceled
	KindStatus
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindDNS:
		return "dns"
	case KindRefused:
		return "refused"
	case KindUnreachable:
		return "unreachable"
	case KindCanceled:
		return "canceled"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "transport"
	}
}

// Connectivity reports whether the kind means the backend was never reached.
func (k Kind) Connectivity() bool {
	switch k {
	case KindTransport, KindTimeout, KindDNS, KindRefused, KindUnreachable:
		return true
	}
	return false
}

// Error is a classified API failure. Message is written for the user.
type Error struct {
	Kind    Kind
	Status  int // HTTP status for KindStatus
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return err.Error()
}

// KindOf returns the kind of a gateway error and whether err was one.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

func classifyTransport(err error, target *url.URL) *Error {
	host := "the backend"
	if target != nil && target.Host != "" {
		host = target.Host
	}

	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Message: "Request was cancelled.", Err: err}
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("Timed out reaching %s. Check that the backend is running and that this device is on the same network.", host),
			Err:     err,
		}
	case errors.As(err, &dnsErr):
		return &Error{
			Kind:    KindDNS,
			Message: fmt.Sprintf("Cannot resolve %s. Check the backend address for typos, or use its IP address.", host),
			Err:     err,
		}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{
			Kind:    KindRefused,
			Message: fmt.Sprintf("Connection refused by %s. Make sure the backend is running and bound to all interfaces (--host 0.0.0.0), not just 127.0.0.1.", host),
			Err:     err,
		}
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETDOWN):
		return &Error{
			Kind:    KindUnreachable,
			Message: fmt.Sprintf("Cannot reach %s. Check that you are online and on the same network as the backend.", host),
			Err:     err,
		}
	default:
		return &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("Could not connect to %s. Check the backend address.", host),
			Err:     err,
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

const maxRawMessage = 512

// statusError builds the failure for a non-2xx response. The message comes
// from a JSON "detail" or "message" string, then the raw body, then a
// generic phrase.
func statusError(path string, status int, body []byte) *Error {
	return &Error{
		Kind:    KindStatus,
		Status:  status,
		Message: statusMessage(status, body),
		Err:     fmt.Errorf("api %s returned status %d", path, status),
	}
}

func statusMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := stringField(payload["detail"]); msg != "" {
			return msg
		}
		if msg := validationDetail(payload["detail"]); msg != "" {
			return msg
		}
		if msg := stringField(payload["message"]); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > maxRawMessage {
			n := maxRawMessage
			for n > 0 && !utf8.RuneStart(text[n]) {
				n--
			}
			text = text[:n] + "…"
		}
		return text
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// validationDetail flattens a FastAPI-style validation list:
// [{"loc": [...], "msg": "..."}].
func validationDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if m := strings.TrimSpace(item.Msg); m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}
