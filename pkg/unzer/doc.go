// Package unzer is a thin client for the Unzer payment REST API.
//
// A Client owns the private key and performs every request; the resource
// wrappers (Baskets, Customers, Metadata, Paypage, Payments, Recurring,
// Webhooks) only build paths and pick the verb. Responses are returned as
// parsed JSON regardless of the HTTP status, so API-level failures must be
// detected by inspecting the payload (for example its "isError" field).
package unzer
