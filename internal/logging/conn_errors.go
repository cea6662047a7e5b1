// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// ConnErrorType represents the category of a database connectivity failure.
type ConnErrorType int

const (
	ConnErrorUnknown ConnErrorType = iota
	ConnErrorTimeout
	ConnErrorDNS
	ConnErrorRefused
	ConnErrorTLS
	ConnErrorLogin
	ConnErrorDatabase
)

// ParseConnError categorizes a connectivity error returned by a driver.
func ParseConnError(err error) ConnErrorType {
	if err == nil {
		return ConnErrorUnknown
	}
	lower := strings.ToLower(err.Error())

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(lower, "no such host") {
		return ConnErrorDNS
	}

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") {
		return ConnErrorTimeout
	}

	var opErr *net.OpError
	if (errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED)) ||
		strings.Contains(lower, "connection refused") {
		return ConnErrorRefused
	}

	switch {
	case strings.Contains(lower, "login failed") ||
		strings.Contains(lower, "password authentication failed") ||
		strings.Contains(lower, "access denied"):
		return ConnErrorLogin
	case strings.Contains(lower, "cannot open database") ||
		(strings.Contains(lower, "database") && strings.Contains(lower, "does not exist")) ||
		strings.Contains(lower, "unknown database"):
		return ConnErrorDatabase
	case strings.Contains(lower, "tls") ||
		strings.Contains(lower, "ssl") ||
		strings.Contains(lower, "certificate") ||
		strings.Contains(lower, "handshake"):
		return ConnErrorTLS
	}
	return ConnErrorUnknown
}

// FormatConnError renders a connectivity failure with troubleshooting hints.
func FormatConnError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Database connection failed"))
	b.WriteString("\n\n")

	switch ParseConnError(err) {
	case ConnErrorTimeout:
		b.WriteString("The server took too long to respond.\n")
		b.WriteString("Check that DB_SERVER is reachable from this machine.\n")
	case ConnErrorDNS:
		b.WriteString("The database host name could not be resolved.\n")
		b.WriteString("Check the DB_SERVER value for typos.\n")
	case ConnErrorRefused:
		b.WriteString("The database server refused the connection.\n")
		b.WriteString("Make sure the server is running and listening on the expected port.\n")
	case ConnErrorTLS:
		b.WriteString("A secure connection could not be established.\n")
		b.WriteString("The server certificate may not be trusted by this machine.\n")
	case ConnErrorLogin:
		b.WriteString("The server rejected the credentials.\n")
		b.WriteString("Check DB_USER and DB_PASSWORD, or run 'sqlagent connect'.\n")
	case ConnErrorDatabase:
		b.WriteString("The configured database does not exist or is not accessible.\n")
		b.WriteString("Check the DB_DATABASE value.\n")
	default:
		b.WriteString("The connectivity check did not succeed.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}
