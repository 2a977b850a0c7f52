// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatFloat formats f with thousands separators and the given decimals.
func FormatFloat(f float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), f)
}

// RoundTo rounds n to the nearest multiple of precision. A non positive
// precision leaves n untouched.
func RoundTo(n, precision float64) float64 {
	if precision <= 0 {
		return n
	}

	return math.Round(n/precision) * precision
}
