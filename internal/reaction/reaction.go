// Package reaction keeps per-target reaction aggregates consistent.
//
// An aggregate is a list of buckets, one per reaction type in the order of
// model.ReactionTypes, each holding the users who picked that type in the
// order they picked it. A user belongs to at most one
// bucket of a target, and every bucket has Count == len(Users) > 0.
package reaction

import (
	"errors"
	"sort"

	"github.com/LearnHub/course-service/internal/model"
	"github.com/google/uuid"
)

var ErrUnknownReactionType = errors.New("unknown reaction type")

// Parse accepts one of the reaction types or "" for a clear request.
func Parse(s string) (model.ReactionType, error) {
	t := model.ReactionType(s)
	if t == model.ReactionNone || t.Valid() {
		return t, nil
	}
	return model.ReactionNone, ErrUnknownReactionType
}

// Toggle applies a user's reaction request and returns the new aggregate.
// Requesting the type the user already holds, or ReactionNone, clears it.
// The user joins the end of the requested bucket. The input slice is left
// untouched.
func Toggle(reactions []model.Reaction, userID uuid.UUID, requested model.ReactionType) []model.Reaction {
	existing, _ := Find(reactions, userID)
	if requested == existing {
		requested = model.ReactionNone
	}

	result := make([]model.Reaction, 0, len(reactions)+1)
	added := false
	for _, r := range reactions {
		users := without(r.Users, userID)
		if r.Type == requested {
			users = append(users, userID)
			added = true
		}
		if len(users) == 0 {
			continue
		}
		result = append(result, model.Reaction{Type: r.Type, Count: len(users), Users: users})
	}

	if requested != model.ReactionNone && !added {
		result = append(result, model.Reaction{Type: requested, Count: 1, Users: []uuid.UUID{userID}})
	}

	sortBuckets(result)
	return result
}

// Find returns the bucket type holding userID.
func Find(reactions []model.Reaction, userID uuid.UUID) (model.ReactionType, bool) {
	for _, r := range reactions {
		for _, id := range r.Users {
			if id == userID {
				return r.Type, true
			}
		}
	}
	return model.ReactionNone, false
}

// UserReaction is the "current user reaction" indicator for a snapshot.
func UserReaction(reactions []model.Reaction, userID uuid.UUID) model.ReactionType {
	if userID == uuid.Nil {
		return model.ReactionNone
	}
	t, _ := Find(reactions, userID)
	return t
}

func Total(reactions []model.Reaction) int {
	total := 0
	for _, r := range reactions {
		total += r.Count
	}
	return total
}

// Normalize repairs an aggregate coming from an untrusted source: duplicate
// users are kept in their first bucket only, counts are recomputed and empty
// or unknown buckets are dropped. Buckets of the same type are merged.
func Normalize(reactions []model.Reaction) []model.Reaction {
	seen := make(map[uuid.UUID]struct{})
	index := make(map[model.ReactionType]int)
	result := make([]model.Reaction, 0, len(reactions))

	for _, r := range reactions {
		if !r.Type.Valid() {
			continue
		}
		for _, id := range r.Users {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			i, ok := index[r.Type]
			if !ok {
				i = len(result)
				index[r.Type] = i
				result = append(result, model.Reaction{Type: r.Type})
			}
			result[i].Users = append(result[i].Users, id)
			result[i].Count++
		}
	}

	sortBuckets(result)
	return result
}

// FromRows groups stored per-user reactions of one target into buckets.
// Users keep row order inside a bucket.
func FromRows(rows []model.ReactionRow) []model.Reaction {
	buckets := make([]model.Reaction, 0)
	for _, row := range rows {
		buckets = append(buckets, model.Reaction{Type: row.Type, Count: 1, Users: []uuid.UUID{row.UserID}})
	}
	return Normalize(buckets)
}

// GroupRows splits rows of many targets into one aggregate per target.
func GroupRows(rows []model.ReactionRow) map[uuid.UUID][]model.Reaction {
	byTarget := make(map[uuid.UUID][]model.ReactionRow)
	for _, row := range rows {
		byTarget[row.TargetID] = append(byTarget[row.TargetID], row)
	}

	result := make(map[uuid.UUID][]model.Reaction, len(byTarget))
	for target, targetRows := range byTarget {
		result[target] = FromRows(targetRows)
	}
	return result
}

func without(users []uuid.UUID, userID uuid.UUID) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(users)+1)
	for _, id := range users {
		if id != userID {
			result = append(result, id)
		}
	}
	return result
}

func sortBuckets(reactions []model.Reaction) {
	sort.SliceStable(reactions, func(i, j int) bool {
		return rank(reactions[i].Type) < rank(reactions[j].Type)
	})
}

func rank(t model.ReactionType) int {
	for i, known := range model.ReactionTypes {
		if known == t {
			return i
		}
	}
	return len(model.ReactionTypes)
}
