package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDrugs(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	csv := strings.Join([]string{
		"id,name,strength,dosage_form,category,keywords",
		"paracetamol_500mg, Paracetamol ,500mg,Tablet,Analgesic,Paracetamol; pain ;;fever",
		"short,row",
		",Nameless,1mg,Tablet,None,x",
		"paracetamol_500mg,Duplicate,500mg,Tablet,Analgesic,dup",
		"zinc_20mg,Zinc Sulphate,20mg,Dispersible Tablet,Supplement,",
	}, "\n")

	drugs, err := LoadDrugs(strings.NewReader(csv), createdAt, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, drugs, 2)

	assert.Equal(t, "paracetamol_500mg", drugs[0].ID)
	assert.Equal(t, "Paracetamol", drugs[0].Name)
	assert.Equal(t, "paracetamol", drugs[0].SearchName)
	assert.Equal(t, []string{"paracetamol", "pain", "fever"}, drugs[0].SearchKeywords)
	assert.Equal(t, createdAt, drugs[0].CreatedAt)

	assert.Equal(t, "Zinc Sulphate", drugs[1].Name)
	assert.Empty(t, drugs[1].SearchKeywords)
}

func TestLoadDrugsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := LoadDrugs(strings.NewReader(""), time.Now(), nil)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	data, err := Load(now, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, data.Drugs, 17)
	assert.NotEmpty(t, data.PharmacyInventory)
	assert.NotEmpty(t, data.PHCInventory)

	ids := make(map[string]bool, len(data.Drugs))
	for _, d := range data.Drugs {
		ids[d.ID] = true
	}
	for _, item := range data.PharmacyInventory {
		assert.True(t, ids[item.DrugID()], "pharmacy item %s references a known drug", item.InventoryID)
		assert.Equal(t, item.Quantity <= item.LowStockThreshold, item.LowStockAlert)
	}
	for _, item := range data.PHCInventory {
		assert.True(t, ids[item.DrugID()], "phc item %s references a known drug", item.InventoryID)
		assert.Equal(t, item.Quantity <= item.LowStockThreshold, item.LowStockAlert)
	}

	require.NotEmpty(t, data.PublicPharmacies)
	assert.EqualValues(t, 1, data.PublicPharmacies[0].ID)
	assert.Equal(t, 0, data.PublicPharmacies[0].AvailableDrugs.Len())
	for _, p := range data.PublicPharmacies[1:] {
		assert.Equal(t, p.AvailableDrugs.Len(), p.TotalDrugs, "listing %d", p.ID)
	}
}
