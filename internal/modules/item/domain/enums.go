//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ItemKind represents the type of source an item was ingested from
// ENUM(rss,channel)
type ItemKind string
