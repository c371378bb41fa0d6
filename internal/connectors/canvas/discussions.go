package canvas

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/miner"
)

// Ensure DiscussionsAdapter implements the interface.
var _ driven.SourceAdapter = (*DiscussionsAdapter)(nil)

// DiscussionsAdapter collects files posted in discussion topics and replies.
type DiscussionsAdapter struct {
	client *Client
}

// NewDiscussionsAdapter creates a discussions adapter.
func NewDiscussionsAdapter(client *Client) *DiscussionsAdapter {
	return &DiscussionsAdapter{client: client}
}

// Name returns the adapter name.
func (a *DiscussionsAdapter) Name() string {
	return string(SourceDiscussions)
}

// Fetch mines each topic message, then each reply.
// Reply listings are often forbidden for students; that only costs the replies.
func (a *DiscussionsAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	var issues []domain.Issue

	topics, err := GetAll[apiDiscussion](ctx, a.client, coursePath(courseID, "discussion_topics?per_page=100"))
	if err != nil {
		logger.Warn("discussions: %v", err)
		issues = append(issues, newIssue(a.Name(), err))
	}

	var items []domain.ContentItem
	for _, topic := range keepValid(topics, apiDiscussion.validate) {
		folder := "discussions/" + classifier.Sanitize(topic.Title, classifier.KindPathComponent)
		opts := miner.Options{
			BaseURL: a.client.BaseURL(),
			Context: "discussion_" + topic.Title,
			Source:  domain.SourceDiscussion,
		}

		for _, att := range keepValid(topic.Attachments, apiAttachment.validate) {
			item := attachmentItem(att, courseID, domain.SourceDiscussion)
			item.Folder = folder
			items = append(items, item)
		}
		items = append(items, inFolder(miner.Mine(topic.Message, opts), folder, courseID)...)

		if err := a.client.Pause(ctx); err != nil {
			break
		}
		entries, err := GetAll[apiEntry](ctx, a.client,
			coursePath(courseID, "discussion_topics/"+topic.ID.String()+"/entries?per_page=50"))
		if err != nil {
			logger.Warn("discussion %s entries: %v", topic.ID, err)
			issues = append(issues, newIssue(a.Name()+"/"+topic.ID.String()+"/entries", err))
			continue
		}

		opts.Source = domain.SourceDiscussionReply
		for _, entry := range entries {
			items = append(items, inFolder(miner.Mine(entry.Message, opts), folder, courseID)...)
		}
	}

	logger.Debug("discussions: %d items", len(items))
	return items, issues
}

// inFolder stamps mined items with their folder and course.
func inFolder(items []domain.ContentItem, folder, courseID string) []domain.ContentItem {
	for i := range items {
		items[i].Folder = folder
		items[i].CourseID = courseID
	}
	return items
}
