// Package gateway models the external channel that delivers human-readable
// verification codes and reports them back to the issuing store.
//
// The stores (pkg/verification, pkg/reset) create a pending record with no code
// and hand delivery off through the Gateway interface. The production
// NotifyingGateway generates a 6-digit passcode, reports it back through the
// store's CodeSink before dialing out, then sends it over the configured
// notification channel. A genuinely external relay can instead assign the code
// through the HTTP callback in gateway/api.
package gateway
