package engineclient

import (
	"fmt"
	"strconv"
	"strings"
)

// ResponseType selects how the payload of a "resp" reply is decoded.
type ResponseType int

const (
	ResponseNone ResponseType = iota
	ResponseInteger
	ResponseFloat
	ResponseString
)

// Response is the decoded payload of one command reply.
type Response struct {
	Code int
	I    int
	F    float32
	S    string
}

// send writes a NUL-terminated message on the command socket. In blocking
// mode it waits for and parses the reply; in non-blocking mode it only
// increments the pending-reply counter, deferring the read to Scope.Close,
// which drains the pending replies.
func (c *Client) send(message string, respType ResponseType) (Response, error) {
	if c.dummy {
		return dummySuccess(respType), nil
	}
	if c.cmdW == nil {
		return Response{}, wrapErr(KindTransport, fmt.Errorf("not connected"))
	}

	if _, err := c.cmdW.WriteString(message); err != nil {
		return Response{}, wrapErr(KindTransport, err)
	}
	if err := c.cmdW.WriteByte(0); err != nil {
		return Response{}, wrapErr(KindTransport, err)
	}
	if err := c.cmdW.Flush(); err != nil {
		return Response{}, wrapErr(KindTransport, err)
	}

	if c.nonBlk {
		c.pending++
		return Response{}, nil
	}

	return c.readReply(respType)
}

func (c *Client) readReply(respType ResponseType) (Response, error) {
	line, err := readUntilNUL(c.cmd)
	if err != nil {
		return Response{}, wrapErr(KindTransport, err)
	}

	var rest string
	switch {
	case strings.HasPrefix(line, "resp "):
		rest = line[len("resp "):]
	case strings.HasPrefix(line, "r ") && len(line) >= 3:
		rest = line[len("r "):]
	default:
		return Response{}, wrapErr(KindProtocol, fmt.Errorf("malformed reply (missing 'r'/'resp' prefix): %q", line))
	}

	codeStr := rest
	payload := ""
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		codeStr = rest[:idx]
		payload = rest[idx+1:]
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeStr))
	if err != nil {
		return Response{}, wrapErr(KindProtocol, fmt.Errorf("malformed reply code %q: %w", codeStr, err))
	}
	if code < 0 {
		return Response{}, &Error{Kind: KindEngine, Code: code, Err: fmt.Errorf(EngineErrorString(code))}
	}

	resp := Response{Code: code}
	switch respType {
	case ResponseNone:
	case ResponseInteger:
		resp.I, _ = strconv.Atoi(strings.TrimSpace(payload))
	case ResponseFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(payload), 32)
		resp.F = float32(f)
	case ResponseString:
		resp.S = payload
	}
	return resp, nil
}

func dummySuccess(respType ResponseType) Response {
	r := Response{Code: 0}
	_ = respType
	return r
}

// readUntilNUL reads bytes from r until a NUL byte, returning everything
// before it as a string.
func readUntilNUL(r interface{ Read([]byte) (int, error) }) (string, error) {
	buf := make([]byte, 0, 128)
	one := make([]byte, 1)
	for {
		n, err := r.Read(one)
		if n == 1 {
			if one[0] == 0 {
				return string(buf), nil
			}
			buf = append(buf, one[0])
		}
		if err != nil {
			return "", err
		}
	}
}
