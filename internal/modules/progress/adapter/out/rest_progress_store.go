package out

import (
	"context"

	"courseplay/internal/modules/progress/domain"
	progressout "courseplay/internal/modules/progress/port/out"
	"courseplay/internal/platform/apiclient"
)

type RESTProgressStore struct {
	client *apiclient.Client
}

func NewRESTProgressStore(client *apiclient.Client) progressout.Store {
	return &RESTProgressStore{client: client}
}

func (s *RESTProgressStore) UpdateProgress(ctx context.Context, update domain.Update) error {
	body := apiclient.ProgressUpdateDoc{
		LastPosition: update.LastPosition,
		Percentage:   update.Percentage,
	}
	if update.Completed {
		completed := true
		body.Completed = &completed
	}
	return s.client.Put(ctx, apiclient.PathProgress, map[string]string{"videoId": update.VideoID}, body, nil)
}

func (s *RESTProgressStore) MarkSectionSeen(ctx context.Context, sectionID string) error {
	return s.client.Post(ctx, apiclient.PathSectionSeen, map[string]string{"sectionId": sectionID}, nil, nil)
}
