/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/atombpmn/flowrt/src/core/logger"
)

// emailHandler is the registry's builtin handler for the "email" task
// type: it sends a single plaintext message over SMTP built from the
// task's properties.
type emailHandler struct {
	logger logger.ComponentLogger
}

// NewEmailHandler builds a handler for the "email" task type. Properties
// recognized: smtpHost, smtpPort (default 25), from, to (comma separated),
// subject, body, username, password (used only if both are set).
func NewEmailHandler(log logger.ComponentLogger) Handler {
	return &emailHandler{logger: log}
}

func (h *emailHandler) Execute(ctx context.Context, properties map[string]string, variables map[string]interface{}) (map[string]interface{}, error) {
	host := properties["smtpHost"]
	if host == "" {
		return nil, fmt.Errorf("email handler: missing smtpHost property")
	}
	port := properties["smtpPort"]
	if port == "" {
		port = "25"
	}
	from := properties["from"]
	to := splitRecipients(properties["to"])
	if from == "" || len(to) == 0 {
		return nil, fmt.Errorf("email handler: from and to are required")
	}

	subject := properties["subject"]
	body := properties["body"]
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, strings.Join(to, ", "), subject, body)

	addr := fmt.Sprintf("%s:%s", host, port)
	var auth smtp.Auth
	if user, pass := properties["username"], properties["password"]; user != "" && pass != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}

	if err := smtp.SendMail(addr, auth, from, to, []byte(msg)); err != nil {
		return nil, fmt.Errorf("email handler: sending mail: %w", err)
	}

	h.logger.Debug("email handler sent message",
		logger.String("to", strings.Join(to, ",")),
		logger.String("subject", subject))

	return map[string]interface{}{"sent": true, "recipients": to}, nil
}

func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
