// internal/urn/doc.go

/*
Package urn provides a structured representation of the entity identifiers
used by the lineage service, based on the canonical format
`urn:li:<entityType>:<key>`.

Keys may be plain strings or parenthesised tuples that nest other URNs, e.g.
`urn:li:dataJob:(urn:li:dataFlow:(airflow,daily,prod),load_orders)`.

The engine treats identifiers as opaque map keys. This package is only used
where structure matters: deriving an entity kind when a record does not carry
one, and validating identifiers that enter through the CLI or HTTP surfaces.
*/
package urn
