package feedsources

import (
	"feed-notifier/models/entities"
	"feed-notifier/utils/databases"
)

type Repository interface {
	GetFeeds() ([]entities.Feed, error)
	Create(feed entities.Feed) error
	Delete(feedID string) error
	Count() int64
}

type Impl struct {
	db databases.SqlConnection
}
