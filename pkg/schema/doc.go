// Package schema checks workflow context values against declared types.
//
// A Schema maps context keys to types. It is usually written in a workflow
// document as a map of type names:
//
//	contextSchema:
//	  cartsCanceled: int
//	  coupon: string?
//	  tags: "[string]"
//
// A trailing "?" makes the key optional. Validation reports every failing key
// at once as an *AggregateError.
package schema
