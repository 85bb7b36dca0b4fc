// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips unsafe markup from rendered contest text.
var htmlSanitizer = bluemonday.UGCPolicy()

// RenderMarkdown converts Markdown to sanitized HTML. Contest descriptions
// and rules are authored as Markdown by admins and served pre-rendered so
// clients never receive raw user markup.
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
