// Package gate decides which items and topics of a sequential question set a
// learner has completed or may open, given only how many items they have
// attempted. Items are 1-based; topics group TopicSize consecutive items.
package gate

func Completed(n, attempted int) bool { return n >= 1 && n <= clamp(attempted) }

func Accessible(n, attempted int) bool { return n >= 1 && n <= clamp(attempted)+1 }

func Locked(n, attempted int) bool { return !Accessible(n, attempted) }

// TopicOf returns ceil(n/size).
func TopicOf(n, size int) int {
	size = topicSize(size)
	if n < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// PositionInTopic returns the 1-based position of item n inside its topic.
func PositionInTopic(n, size int) int {
	size = topicSize(size)
	if n < 1 {
		return 0
	}
	return ((n - 1) % size) + 1
}

func TopicCompleted(topicID, attempted, size int) bool {
	return topicID >= 1 && clamp(attempted)/topicSize(size) >= topicID
}

func TopicAccessible(topicID, attempted, size int) bool {
	return topicID >= 1 && topicID <= clamp(attempted)/topicSize(size)+1
}

type ItemStatus struct {
	Completed  bool `json:"completed"`
	Accessible bool `json:"accessible"`
	Locked     bool `json:"locked"`
}

func Status(n, attempted int) ItemStatus {
	acc := Accessible(n, attempted)
	return ItemStatus{
		Completed:  Completed(n, attempted),
		Accessible: acc,
		Locked:     !acc,
	}
}

type Topic struct {
	TopicID    int  `json:"topic_id"`
	FirstID    int  `json:"first_id"`
	LastID     int  `json:"last_id"`
	Completed  bool `json:"completed"`
	Accessible bool `json:"accessible"`
	Locked     bool `json:"locked"`
}

type Overview struct {
	Category        string  `json:"category"`
	Attempted       int     `json:"attempted"`
	TotalItems      int     `json:"total_items"`
	TopicSize       int     `json:"topic_size"`
	TotalTopics     int     `json:"total_topics"`
	CompletedTopics int     `json:"completed_topics"`
	NextItemID      *int    `json:"next_item_id"`
	Topics          []Topic `json:"topics"`
}

// BuildOverview lays out every topic of a set holding totalItems items.
// NextItemID is nil once attempted has reached the end of the set.
func BuildOverview(category string, attempted, totalItems, size int) Overview {
	size = topicSize(size)
	if totalItems < 0 {
		totalItems = 0
	}
	a := clamp(attempted)
	out := Overview{
		Category:   category,
		Attempted:  a,
		TotalItems: totalItems,
		TopicSize:  size,
	}
	out.TotalTopics = TopicOf(totalItems, size)
	out.Topics = make([]Topic, 0, out.TotalTopics)
	for id := 1; id <= out.TotalTopics; id++ {
		last := id * size
		if last > totalItems {
			last = totalItems
		}
		acc := TopicAccessible(id, a, size)
		t := Topic{
			TopicID:    id,
			FirstID:    (id-1)*size + 1,
			LastID:     last,
			Completed:  TopicCompleted(id, a, size),
			Accessible: acc,
			Locked:     !acc,
		}
		if t.Completed {
			out.CompletedTopics++
		}
		out.Topics = append(out.Topics, t)
	}
	if next := a + 1; next <= totalItems {
		out.NextItemID = &next
	}
	return out
}

func clamp(attempted int) int {
	if attempted < 0 {
		return 0
	}
	return attempted
}

func topicSize(size int) int {
	if size < 1 {
		return 1
	}
	return size
}
