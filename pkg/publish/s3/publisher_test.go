package s3

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/weekly-pulse/pkg/models/domain"
	"github.com/de-tools/weekly-pulse/pkg/services/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutter struct {
	mock.Mock
	mu     sync.Mutex
	bodies map[string]string
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	m.mu.Lock()
	if m.bodies == nil {
		m.bodies = map[string]string{}
	}
	m.bodies[*params.Key] = string(body)
	m.mu.Unlock()

	args := m.Called(*params.Bucket, *params.Key, *params.ContentType)
	return &s3.PutObjectOutput{}, args.Error(0)
}

var week29 = domain.ISOWeek{Year: 2025, Week: 29}

func TestPublisher_Publish(t *testing.T) {
	client := new(mockPutter)
	client.On("PutObject", "reports", "weekly/2025/W29/r1/report.json", "application/json").Return(nil)
	client.On("PutObject", "reports", "weekly/2025/W29/r1/summary.txt", "text/plain; charset=utf-8").Return(nil)

	p, err := NewPublisher(client, "reports", "weekly")
	require.NoError(t, err)

	uris, err := p.Publish(context.Background(), week29, "r1", []Artifact{
		{Name: "report.json", ContentType: "application/json", Body: []byte(`{"id":"r1"}`)},
		{Name: "summary.txt", ContentType: "text/plain; charset=utf-8", Body: []byte("Week 29")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s3://reports/weekly/2025/W29/r1/report.json",
		"s3://reports/weekly/2025/W29/r1/summary.txt",
	}, uris)
	assert.Equal(t, "Week 29", client.bodies["weekly/2025/W29/r1/summary.txt"])
	client.AssertExpectations(t)
}

func TestPublisher_PublishFailure(t *testing.T) {
	client := new(mockPutter)
	client.On("PutObject", "reports", mock.Anything, mock.Anything).Return(errors.New("access denied"))

	p, err := NewPublisher(client, "reports", "")
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), week29, "r1", []Artifact{
		{Name: "report.json", ContentType: "application/json"},
	})
	assert.ErrorContains(t, err, "weekly-reports/2025/W29/r1/report.json")
	assert.ErrorContains(t, err, "access denied")
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(nil, "reports", "")
	assert.Error(t, err)

	_, err = NewPublisher(new(mockPutter), "", "")
	assert.Error(t, err)
}

type composerStub struct{}

func (composerStub) Compose(r *domain.WeeklyReport, _ summary.Format) (string, error) {
	return "Week 29 (sheets)", nil
}

func TestReportPublisher_PublishReport(t *testing.T) {
	client := new(mockPutter)
	client.On("PutObject", "reports", mock.Anything, mock.Anything).Return(nil)

	p, err := NewPublisher(client, "reports", "weekly")
	require.NoError(t, err)
	rp := NewReportPublisher(p, composerStub{})

	weekly := &domain.WeeklyReport{
		ID:           "r1",
		Week:         week29,
		PreviousYear: domain.YearEquivalent{Week: domain.ISOWeek{Year: 2024, Week: 29}},
		Summary:      "Week 29, 2025",
	}

	uris, err := rp.PublishReport(context.Background(), weekly)
	require.NoError(t, err)
	assert.Len(t, uris, 4)
	assert.Equal(t, "Week 29 (sheets)", client.bodies["weekly/2025/W29/r1/summary-sheets.txt"])
	assert.Contains(t, client.bodies["weekly/2025/W29/r1/report.json"], `"id": "r1"`)
	assert.NotEmpty(t, client.bodies["weekly/2025/W29/r1/report.xlsx"])
	client.AssertNumberOfCalls(t, "PutObject", 4)
}
