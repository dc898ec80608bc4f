// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome constants for auth metrics.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid_credentials"
	LoginLocked  = "locked"
	LoginError   = "error"

	VerifyOK       = "ok"
	VerifyMissing  = "missing"
	VerifyRejected = "rejected"
)

// Logins counts login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_logins_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"outcome"},
)

// Registrations counts account registrations by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_registrations_total",
		Help: "Total number of registration attempts by outcome",
	},
	[]string{"outcome"},
)

// Verifications counts bearer token checks by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Verifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_token_verifications_total",
		Help: "Total number of bearer token verifications by outcome",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers auth package metrics with the given registry.
// This must be called at startup to make metrics available on /metrics.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Logins)
	reg.MustRegister(Registrations)
	reg.MustRegister(Verifications)
}

// RecordLogin increments the login counter for the outcome.
func RecordLogin(outcome string) {
	Logins.WithLabelValues(outcome).Inc()
}

// RecordRegistration increments the registration counter for the outcome.
func RecordRegistration(outcome string) {
	Registrations.WithLabelValues(outcome).Inc()
}

// RecordVerification increments the verification counter for the outcome.
func RecordVerification(outcome string) {
	Verifications.WithLabelValues(outcome).Inc()
}
