// Package customer validates and stores customer records.
package customer
