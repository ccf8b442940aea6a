package aggregate

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
)

const huggingFaceAPIBase = "https://huggingface.co/api"

// Hugging Face entity kinds.
const (
	HFKindModel   = "model"
	HFKindSpace   = "space"
	HFKindDataset = "dataset"
)

var (
	hfSpacePattern   = regexp.MustCompile(`huggingface\.co/spaces/([^/]+/[^/?#]+)`)
	hfDatasetPattern = regexp.MustCompile(`huggingface\.co/datasets/([^/]+/[^/?#]+)`)
	hfModelPattern   = regexp.MustCompile(`huggingface\.co/([^/]+/[^/?#]+)`)
)

// nonModelPrefixes are huggingface.co paths that look like model IDs but
// are site pages.
var nonModelPrefixes = []string{"docs/", "blog/", "papers/", "pricing"}

// ExtractHuggingFaceID pulls an entity ID and its kind out of a Hugging
// Face URL. Spaces and datasets are matched before the generic model
// pattern since their URLs nest one level deeper.
func ExtractHuggingFaceID(url string) (id, kind string, ok bool) {
	if url == "" {
		return "", "", false
	}
	if m := hfSpacePattern.FindStringSubmatch(url); m != nil {
		return strings.TrimRight(m[1], "/"), HFKindSpace, true
	}
	if m := hfDatasetPattern.FindStringSubmatch(url); m != nil {
		return strings.TrimRight(m[1], "/"), HFKindDataset, true
	}
	if m := hfModelPattern.FindStringSubmatch(url); m != nil {
		id = strings.TrimRight(m[1], "/")
		for _, prefix := range nonModelPrefixes {
			if strings.HasPrefix(id, prefix) {
				return "", "", false
			}
		}
		return id, HFKindModel, true
	}
	return "", "", false
}

// HuggingFace fetches model and space metrics from the Hugging Face Hub
// API. Public entities need no authentication; a token raises rate limits.
type HuggingFace struct {
	fetcher *fetcher
	token   string
}

// NewHuggingFace creates a Hugging Face aggregator. token may be empty.
func NewHuggingFace(cache storage.Cache, token string) *HuggingFace {
	return &HuggingFace{fetcher: newFetcher(cache), token: token}
}

type hfEntityResponse struct {
	Downloads int `json:"downloads"`
	Likes     int `json:"likes"`
}

// Fetch returns model stats for any URL referencing a Hugging Face entity.
// A non-HF URL yields (nil, nil). Datasets have no useful metrics API and
// record only their identity.
func (h *HuggingFace) Fetch(ctx context.Context, url string) (*catalog.ModelStats, error) {
	id, kind, ok := ExtractHuggingFaceID(url)
	if !ok {
		return nil, nil
	}

	stats := &catalog.ModelStats{
		ModelID:   id,
		Kind:      kind,
		FetchedAt: time.Now().UTC(),
	}
	if kind == HFKindDataset {
		return stats, nil
	}

	headers := map[string]string{}
	if h.token != "" {
		headers["Authorization"] = "Bearer " + h.token
	}

	endpoint := huggingFaceAPIBase + "/models/" + id
	if kind == HFKindSpace {
		endpoint = huggingFaceAPIBase + "/spaces/" + id
	}

	var resp hfEntityResponse
	if err := h.fetcher.getJSON(ctx, "huggingface", endpoint, headers, &resp); err != nil {
		return nil, err
	}

	stats.Downloads = resp.Downloads
	stats.Likes = resp.Likes
	return stats, nil
}
