package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase_Descriptor(t *testing.T) {
	b := NewBase("http.pbirs", "Power BI Report Server", "Microsoft", nil, nil)

	assert.Equal(t, "http.pbirs", b.ID())
	assert.NotNil(t, b.Client)
	assert.NotNil(t, b.Logger)
	assert.NoError(t, b.Close())

	desc := b.GetDescriptor()
	assert.Equal(t, "http.rest", desc.Family)
	assert.Equal(t, "Power BI Report Server", desc.Title)
	assert.Equal(t, "Microsoft", desc.Vendor)
}
