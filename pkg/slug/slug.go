// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives site slugs from display names.
//
// A slug is lowercase ASCII letters and digits in hyphen-separated runs, the
// format validate.Slug accepts, so "Hà Nội Store" becomes "ha-noi-store".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps generated slugs. Longer names are cut at a hyphen.
const MaxLength = 64

// foldAccents strips combining marks after canonical decomposition.
var foldAccents = transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}), norm.NFC)

// letters without a decomposition that still have an obvious ASCII form.
var replacements = strings.NewReplacer("đ", "d", "Đ", "d", "ø", "o", "Ø", "o", "ß", "ss", "æ", "ae", "Æ", "ae")

// From converts name into a slug. Names without any ASCII letter or digit
// yield "".
func From(name string) string {
	folded, _, err := transform.String(foldAccents, replacements.Replace(name))
	if err != nil {
		folded = name
	}

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}

	return truncate(builder.String())
}

func truncate(slug string) string {
	if len(slug) <= MaxLength {
		return slug
	}
	slug = slug[:MaxLength]
	if cut := strings.LastIndexByte(slug, '-'); cut > 0 {
		slug = slug[:cut]
	}
	return strings.TrimRight(slug, "-")
}
