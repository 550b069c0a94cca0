// Package utils provides loose type conversions for values coming back from
// database drivers, query strings and decoded JSON, where the concrete type
// depends on the dialect or the client.
package utils
