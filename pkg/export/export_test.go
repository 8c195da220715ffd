package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	return Report{
		Title: "Student Statistics",
		Sections: []Section{
			{Title: "Gender", Data: Dataset{
				Headers: []string{"Key", "Count"},
				Rows:    []map[string]string{{"Key": "F", "Count": "3"}, {"Key": "M", "Count": "2"}},
			}},
			{Title: "Totals", Data: Dataset{
				Headers: []string{"Key", "Count"},
				Rows:    []map[string]string{{"Key": "Active", "Count": "5"}},
			}},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"EP ID", "Name"},
		Rows:    []map[string]string{{"EP ID": "7", "Name": "Sara, A."}},
	})
	require.NoError(t, err)
	require.Equal(t, "EP ID,Name\n7,\"Sara, A.\"\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVRenderReport(t *testing.T) {
	out, err := NewCSVExporter().RenderReport(sampleReport())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Equal(t, "Student Statistics", lines[0])
	require.Equal(t, "Gender", lines[1])
	require.Equal(t, "Key,Count", lines[2])
	require.Contains(t, string(out), "Active,5")
}

func TestPDFRenderReport(t *testing.T) {
	out, err := NewPDFExporter().RenderReport(sampleReport())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().RenderReport(Report{})
	require.Error(t, err)
}
