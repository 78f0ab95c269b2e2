package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/querypilot/nl2sql/internal/llm"
	"github.com/querypilot/nl2sql/internal/schema"
)

// mockService is a testify mock over the model client
type mockService struct {
	mock.Mock
}

func (m *mockService) Call(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockService) Configure(cfg llm.Config) error {
	return m.Called(cfg).Error(0)
}

// buildModel creates a schema model with n single-column tables named
// t1..tn.
func buildModel(t *testing.T, n int) *schema.Model {
	t.Helper()

	tables := make([]schema.Table, 0, n)
	for i := 1; i <= n; i++ {
		tables = append(tables, schema.Table{
			Name:    fmt.Sprintf("t%d", i),
			Columns: []schema.Column{{Name: "id", Type: "INTEGER"}},
		})
	}

	model, err := schema.NewModel("test", tables, nil)
	require.NoError(t, err)

	return model
}

func TestFilterSkipsSmallSchemas(t *testing.T) {
	service := &mockService{}
	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 9)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.False(t, result.Filtered)
	assert.NoError(t, result.Err)
	assert.Equal(t, 9, result.Model.TableCount)
	service.AssertNotCalled(t, "Call", mock.Anything, mock.Anything)
}

func TestFilterRunsAtThreshold(t *testing.T) {
	service := &mockService{}
	service.On("Call", mock.Anything, mock.Anything).Return(`["t1"]`, nil)

	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 10)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.True(t, result.Filtered)
	assert.NoError(t, result.Err)
	assert.Equal(t, []string{"t1"}, result.Model.TableNames())
	service.AssertNumberOfCalls(t, "Call", 1)
}

func TestFilterRetainsSelectedTables(t *testing.T) {
	service := &mockService{}
	service.On("Call", mock.Anything, mock.Anything).
		Return(`["T1", "t3", "nonexistent"]`, nil)

	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 12)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.True(t, result.Filtered)
	assert.NoError(t, result.Err)
	// matching is case-insensitive; unknown names are dropped
	assert.Equal(t, []string{"t1", "t3"}, result.Model.TableNames())
	assert.Equal(t, 2, result.Model.TableCount)
}

func TestFilterCallFailureFallsBack(t *testing.T) {
	service := &mockService{}
	service.On("Call", mock.Anything, mock.Anything).
		Return("", assert.AnError)

	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 12)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.False(t, result.Filtered)
	assert.Error(t, result.Err)
	assert.Equal(t, 12, result.Model.TableCount)
}

func TestFilterUnparseableResponseFallsBack(t *testing.T) {
	service := &mockService{}
	service.On("Call", mock.Anything, mock.Anything).
		Return("all of them, probably", nil)

	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 12)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.False(t, result.Filtered)
	assert.Error(t, result.Err)
	assert.Equal(t, 12, result.Model.TableCount)
}

func TestFilterEmptySelectionFallsBack(t *testing.T) {
	service := &mockService{}
	service.On("Call", mock.Anything, mock.Anything).
		Return(`["only_unknown_tables"]`, nil)

	filter := NewRelevanceFilter(service, 10)
	model := buildModel(t, 12)

	result := filter.Filter(context.Background(), model, "how many rows?")

	assert.False(t, result.Filtered)
	assert.Error(t, result.Err)
	assert.Equal(t, 12, result.Model.TableCount)
}

func TestNewRelevanceFilterDefaultThreshold(t *testing.T) {
	filter := NewRelevanceFilter(&mockService{}, 0)
	assert.Equal(t, DefaultFilterThreshold, filter.threshold)
}
