// Package prediction implements one-off scoring and the outcome store's
// read and correction paths.
package prediction
