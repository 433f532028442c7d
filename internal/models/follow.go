package models

// RelationCounts holds the sizes of a user's follower and following sets.
type RelationCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
