package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"line-dealer-bot/models"
)

type fakeVehicleSearcher struct {
	vehicles    []models.Vehicle
	err         error
	lastKeyword string
	lastLimit   int64
}

func (f *fakeVehicleSearcher) Search(ctx context.Context, keyword string, limit int64) ([]models.Vehicle, error) {
	f.lastKeyword = keyword
	f.lastLimit = limit
	return f.vehicles, f.err
}

func TestResponderAnswerNoMatch(t *testing.T) {
	searcher := &fakeVehicleSearcher{}
	responder := NewResponder("test-key", "gpt-3.5-turbo", searcher)

	answer, err := responder.Answer(context.Background(), "我想找兩百萬以內的車")

	assert.NoError(t, err)
	assert.Equal(t, NoMatchMessage, answer)
	// Numeral runs are converted before the lookup
	assert.Equal(t, "我想找2000000以內的車", searcher.lastKeyword)
	assert.Equal(t, int64(5), searcher.lastLimit)
}

func TestResponderAnswerSearchError(t *testing.T) {
	searcher := &fakeVehicleSearcher{err: errors.New("server selection timeout")}
	responder := NewResponder("test-key", "gpt-3.5-turbo", searcher)

	answer, err := responder.Answer(context.Background(), "有藍色的車嗎")

	assert.Error(t, err)
	assert.Empty(t, answer)
	assert.Contains(t, err.Error(), "search vehicles")
}

func TestBuildSalesPrompt(t *testing.T) {
	vehicles := []models.Vehicle{
		{Brand: "Toyota", Model: "RAV4", Price: 95.8},
		{Brand: "Honda", Model: "CR-V", Price: 88},
	}

	prompt := buildSalesPrompt("有休旅車嗎", vehicles)

	assert.Contains(t, prompt, "「有休旅車嗎」")
	assert.Contains(t, prompt, "廠牌/車種: Toyota / RAV4")
	assert.Contains(t, prompt, "廠牌/車種: Honda / CR-V")
	assert.Contains(t, prompt, "---")
}
