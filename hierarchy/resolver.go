package hierarchy

import "context"

// RelatedAccountIDs fetches the topology rooted at accountID and returns the
// ordered ids of every account related to it along the given axis. When
// includeSelf is true the root account id is prepended to the result.
//
// Fetcher errors, transport and validation kinds alike, propagate unmodified;
// this layer adds no retry or fallback.
func (s *Service) RelatedAccountIDs(ctx context.Context, accountID string, axis Axis, includeSelf bool) ([]string, error) {
	root, err := s.topo.FetchTopology(ctx, accountID, axis)
	if err != nil {
		return nil, err
	}

	related := flattenWithDepth(root.Children(axis), axis, s.maxTraversalDepth)
	if !includeSelf {
		return related, nil
	}

	ids := make([]string, 0, len(related)+1)
	ids = append(ids, root.ID)
	return append(ids, related...), nil
}
