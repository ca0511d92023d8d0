package dashboard

import (
	"context"
	"math"
	"sort"

	"herbtrace-backend/internal/trace"

	"github.com/gofiber/fiber/v2"
)

type StageCounts struct {
	Collector  int `json:"collector"`
	Transport  int `json:"transport"`
	Processing int `json:"processing"`
	Lab        int `json:"lab"`
}

type SpeciesPoint struct {
	Species  string  `json:"species"`
	Chains   int     `json:"chains"`
	Quantity float64 `json:"quantity"`
}

type SummaryResponse struct {
	TotalChains     int            `json:"totalChains"`
	CompletedChains int            `json:"completedChains"`
	PendingChains   int            `json:"pendingChains"`
	CompletionRate  float64        `json:"completionRate"` // percent, one decimal
	StageCounts     StageCounts    `json:"stageCounts"`    // chains that reached each stage
	Species         []SpeciesPoint `json:"species"`
}

type chainLister interface {
	ListChains(ctx context.Context) ([]trace.ChainSummary, error)
}

// Summarize folds chain summaries into overview figures.
func Summarize(chains []trace.ChainSummary) SummaryResponse {
	resp := SummaryResponse{TotalChains: len(chains), Species: []SpeciesPoint{}}

	bySpecies := map[string]*SpeciesPoint{}
	for _, ch := range chains {
		resp.StageCounts.Collector++
		if len(ch.Transport) > 0 {
			resp.StageCounts.Transport++
		}
		if ch.Processing != nil {
			resp.StageCounts.Processing++
		}
		if ch.Lab != nil {
			resp.StageCounts.Lab++
		}
		if ch.Completed {
			resp.CompletedChains++
		}

		sp, ok := bySpecies[ch.Collector.Species]
		if !ok {
			sp = &SpeciesPoint{Species: ch.Collector.Species}
			bySpecies[ch.Collector.Species] = sp
		}
		sp.Chains++
		sp.Quantity += ch.Collector.Quantity
	}

	resp.PendingChains = resp.TotalChains - resp.CompletedChains
	if resp.TotalChains > 0 {
		rate := float64(resp.CompletedChains) / float64(resp.TotalChains) * 100
		resp.CompletionRate = math.Round(rate*10) / 10
	}

	for _, sp := range bySpecies {
		resp.Species = append(resp.Species, *sp)
	}
	sort.Slice(resp.Species, func(i, j int) bool {
		if resp.Species[i].Chains != resp.Species[j].Chains {
			return resp.Species[i].Chains > resp.Species[j].Chains
		}
		return resp.Species[i].Species < resp.Species[j].Species
	})
	return resp
}

// GET /api/dashboard/summary
func SummaryHandler(a chainLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chains, err := a.ListChains(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(Summarize(chains))
	}
}
