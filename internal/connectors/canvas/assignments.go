package canvas

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/miner"
)

// Ensure AssignmentsAdapter implements the interface.
var _ driven.SourceAdapter = (*AssignmentsAdapter)(nil)

// AssignmentsAdapter collects assignment attachments and files linked from descriptions.
type AssignmentsAdapter struct {
	client *Client
}

// NewAssignmentsAdapter creates an assignments adapter.
func NewAssignmentsAdapter(client *Client) *AssignmentsAdapter {
	return &AssignmentsAdapter{client: client}
}

// Name returns the adapter name.
func (a *AssignmentsAdapter) Name() string {
	return string(SourceAssignments)
}

// Fetch lists assignments, then fetches each one's detail for attachments.
func (a *AssignmentsAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	var issues []domain.Issue

	assignments, err := GetAll[apiAssignment](ctx, a.client, coursePath(courseID, "assignments?per_page=100"))
	if err != nil {
		logger.Warn("assignments: %v", err)
		issues = append(issues, newIssue(a.Name(), err))
	}

	var items []domain.ContentItem
	for _, asg := range keepValid(assignments, apiAssignment.validate) {
		if ctx.Err() != nil {
			break
		}

		if len(asg.Attachments) == 0 {
			detail, err := a.detail(ctx, courseID, asg.ID.String())
			if err != nil {
				logger.Warn("assignment %s: %v", asg.ID, err)
				issues = append(issues, newIssue(a.Name()+"/"+asg.ID.String(), err))
			} else {
				asg.Attachments = detail.Attachments
				if asg.Description == "" {
					asg.Description = detail.Description
				}
			}
		}

		folder := "assignments/" + classifier.Sanitize(asg.Name, classifier.KindPathComponent)
		for _, att := range keepValid(asg.Attachments, apiAttachment.validate) {
			item := attachmentItem(att, courseID, domain.SourceAssignment)
			item.Folder = folder
			item.AssignmentName = asg.Name
			items = append(items, item)
		}

		mined := miner.Mine(asg.Description, miner.Options{
			BaseURL: a.client.BaseURL(),
			Context: "assignment_" + asg.Name,
			Source:  domain.SourceAssignmentEmbedded,
		})
		for _, item := range mined {
			item.Folder = folder
			item.AssignmentName = asg.Name
			item.CourseID = courseID
			items = append(items, item)
		}
	}

	logger.Debug("assignments: %d items", len(items))
	return items, issues
}

func (a *AssignmentsAdapter) detail(ctx context.Context, courseID, id string) (*apiAssignment, error) {
	if err := a.client.Pause(ctx); err != nil {
		return nil, err
	}
	var detail apiAssignment
	if err := a.client.Get(ctx, coursePath(courseID, "assignments/"+id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
