package parser

import (
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// EmailParser reads RFC 5322 message exports (.eml). One event per
// message, timestamped at send time from the Date header.
type EmailParser struct{}

func (p *EmailParser) SourceType() model.SourceType {
	return model.SourceEmail
}

func (p *EmailParser) Parse(artifact string, now time.Time) ([]model.Event, error) {
	file, err := os.Open(artifact)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	msg, err := mail.ReadMessage(file)
	if err != nil {
		return nil, fmt.Errorf("parse email %s: %w", artifact, err)
	}

	timestamp := now
	if raw := msg.Header.Get("Date"); raw != "" {
		if t, err := util.ParseTimestamp(raw); err == nil {
			timestamp = t
		} else {
			util.LogDebug(fmt.Sprintf("Unparseable Date header in %s: %q", artifact, raw))
		}
	}

	metadata := map[string]string{"file": artifact}
	if from := msg.Header.Get("From"); from != "" {
		metadata["from"] = from
	}
	if to := msg.Header.Get("To"); to != "" {
		metadata["to"] = to
	}

	body, err := io.ReadAll(io.LimitReader(msg.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("read email body %s: %w", artifact, err)
	}

	return []model.Event{{
		Timestamp:  model.NewTimestamp(timestamp),
		SourceType: model.SourceEmail,
		Title:      strings.TrimSpace(msg.Header.Get("Subject")),
		Summary:    strings.TrimSpace(string(body)),
		Metadata:   metadata,
	}}, nil
}
