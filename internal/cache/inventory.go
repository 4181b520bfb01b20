package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	CategoriesKey       = "categories:all"
	PostKeyPrefix       = "post:%d"
	StatsKey            = "stats:forum"
	UserChannelPrefix   = "notifications:user:%d"
	UserChannelPattern  = "notifications:user:*"
	BroadcastChannelKey = "notifications:broadcast"
)

const (
	UserTTL       = 5 * time.Minute
	CategoriesTTL = 10 * time.Minute
	StatsTTL      = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// UserChannel is the pub/sub channel carrying one user's live notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf(UserChannelPrefix, userID)
}
