package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// VoteCache keeps per-quiz vote tallies in a Redis ZSET so results can be
// read without scanning the quiz document.
type VoteCache interface {
	// Record moves uid's vote to the given option: the previous option (if
	// any) is decremented and the new one incremented.
	Record(ctx context.Context, quizID string, option int, prev *int) error
	Tally(ctx context.Context, quizID string) (map[int]int, error)
}

type voteCache struct {
	client *redis.Client
}

func NewVoteCache(client *redis.Client) VoteCache {
	return &voteCache{client: client}
}

func (c *voteCache) key(quizID string) string {
	return fmt.Sprintf("quiz:%s:votes", quizID)
}

func (c *voteCache) Record(ctx context.Context, quizID string, option int, prev *int) error {
	key := c.key(quizID)
	pipe := c.client.TxPipeline()
	if prev != nil && *prev != option {
		pipe.ZIncrBy(ctx, key, -1, strconv.Itoa(*prev))
	}
	if prev == nil || *prev != option {
		pipe.ZIncrBy(ctx, key, 1, strconv.Itoa(option))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *voteCache) Tally(ctx context.Context, quizID string) (map[int]int, error) {
	results, err := c.client.ZRangeWithScores(ctx, c.key(quizID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	tally := make(map[int]int, len(results))
	for _, z := range results {
		opt, err := strconv.Atoi(z.Member.(string))
		if err != nil {
			continue
		}
		tally[opt] = int(z.Score)
	}
	return tally, nil
}
