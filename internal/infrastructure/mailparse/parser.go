package mailparse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nettextproto "net/textproto"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"knot-api/internal/domain/entity"
)

// Form and JSON field names shared by SendGrid Inbound Parse and Mailgun routes.
const (
	FieldTo      = "to"
	FieldFrom    = "from"
	FieldSubject = "subject"
	FieldText    = "text"
	FieldHTML    = "html"
	FieldHeaders = "headers"
	FieldRaw     = "email"
)

// ErrNullPayload is returned for a JSON body that is the literal null.
var ErrNullPayload = errors.New("email payload is null")

type jsonPayload struct {
	To      string          `json:"to"`
	From    string          `json:"from"`
	Subject string          `json:"subject"`
	Text    string          `json:"text"`
	HTML    string          `json:"html"`
	Headers json.RawMessage `json:"headers"`
	Email   string          `json:"email"`
}

// DecodeJSON decodes a JSON webhook body. Missing fields default to empty.
func DecodeJSON(body []byte) (*entity.EmailWebhookPayload, error) {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, ErrNullPayload
	}

	var raw jsonPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	payload := &entity.EmailWebhookPayload{
		To:      raw.To,
		From:    raw.From,
		Subject: raw.Subject,
		Text:    raw.Text,
		HTML:    raw.HTML,
		Headers: decodeHeaders(raw.Headers),
	}

	if raw.Email != "" {
		if err := FillFromRaw(payload, raw.Email); err != nil {
			return nil, err
		}
	}

	return payload, nil
}

// FromForm builds a payload from form values, the shape SendGrid posts.
func FromForm(value func(key string) string) (*entity.EmailWebhookPayload, error) {
	payload := &entity.EmailWebhookPayload{
		To:      value(FieldTo),
		From:    value(FieldFrom),
		Subject: value(FieldSubject),
		Text:    value(FieldText),
		HTML:    value(FieldHTML),
	}

	if block := value(FieldHeaders); block != "" {
		payload.Headers = ParseHeaderBlock(block)
	}

	if raw := value(FieldRaw); raw != "" {
		if err := FillFromRaw(payload, raw); err != nil {
			return nil, err
		}
	}

	return payload, nil
}

// decodeHeaders accepts either an object or a raw header block. Anything else
// is ignored; headers are informational only.
func decodeHeaders(raw json.RawMessage) map[string]string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var object map[string]any
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil
		}
		headers := make(map[string]string, len(object))
		for key, value := range object {
			if value == nil {
				continue
			}
			headers[key] = fmt.Sprint(value)
		}
		return headers
	case '"':
		var block string
		if err := json.Unmarshal(trimmed, &block); err != nil {
			return nil
		}
		return ParseHeaderBlock(block)
	}

	return nil
}

// ParseHeaderBlock parses an RFC 5322 header block. Repeated fields keep the
// value textproto.Header.Get reports. Whatever parsed before a malformed line
// is kept.
func ParseHeaderBlock(block string) map[string]string {
	block = strings.TrimRight(block, "\r\n") + "\r\n\r\n"
	header, _ := textproto.ReadHeader(bufio.NewReader(strings.NewReader(block)))
	return headerMap(header)
}

func headerMap(header textproto.Header) map[string]string {
	if header.Len() == 0 {
		return nil
	}

	headers := make(map[string]string, header.Len())
	fields := header.Fields()
	for fields.Next() {
		key := nettextproto.CanonicalMIMEHeaderKey(fields.Key())
		if _, exists := headers[key]; exists {
			continue
		}
		headers[key] = header.Get(key)
	}
	return headers
}

// FillFromRaw fills empty payload fields from a raw MIME message.
func FillFromRaw(payload *entity.EmailWebhookPayload, raw string) error {
	mr, err := mail.CreateReader(strings.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to read raw email: %w", err)
	}
	defer mr.Close()

	header := mr.Header

	if payload.To == "" {
		if toList, err := header.AddressList("To"); err == nil && len(toList) > 0 {
			payload.To = toList[0].Address
		}
	}
	if payload.From == "" {
		if fromList, err := header.AddressList("From"); err == nil && len(fromList) > 0 {
			payload.From = fromList[0].Address
		}
	}
	if payload.Subject == "" {
		if subject, err := header.Subject(); err == nil {
			payload.Subject = subject
		}
	}
	if payload.Headers == nil {
		payload.Headers = headerMap(header.Header.Header)
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read raw email part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}

		switch {
		case contentType == "text/plain" && payload.Text == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			payload.Text = string(body)
		case contentType == "text/html" && payload.HTML == "":
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			payload.HTML = string(body)
		}
	}

	return nil
}

// BareAddress reduces "Name <user@host>" to "user@host". Values that do not
// parse as an address are returned unchanged.
func BareAddress(value string) string {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return value
	}
	return addr.Address
}

// MessageID returns the Message-Id header without angle brackets.
func MessageID(headers map[string]string) string {
	for key, value := range headers {
		if strings.EqualFold(key, "Message-Id") {
			return strings.Trim(strings.TrimSpace(value), "<>")
		}
	}
	return ""
}
