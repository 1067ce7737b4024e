package feedsources

import (
	"feed-notifier/models/entities"
	"feed-notifier/utils/databases"

	"gorm.io/gorm/clause"
)

func New(db databases.SqlConnection) *Impl {
	return &Impl{db: db}
}

func (repo *Impl) GetFeeds() ([]entities.Feed, error) {
	var feeds []entities.Feed
	response := repo.db.GetDB().Model(&entities.Feed{}).Order("subscribed_at ASC").Find(&feeds)
	return feeds, response.Error
}

// Create subscribes a feed; subscribing twice is a no-op.
func (repo *Impl) Create(feed entities.Feed) error {
	return repo.db.GetDB().Clauses(clause.OnConflict{DoNothing: true}).Create(&feed).Error
}

func (repo *Impl) Delete(feedID string) error {
	return repo.db.GetDB().Where("id = ?", feedID).Delete(&entities.Feed{}).Error
}

func (repo *Impl) Count() int64 {
	count := new(int64)
	repo.db.GetDB().Model(&entities.Feed{}).Count(count)

	return *count
}
