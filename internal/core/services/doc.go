// Package services holds the use-case logic behind the driving ports.
// A service orchestrates driven ports and domain rules; it never talks
// to storage or an AI provider directly.
package services
