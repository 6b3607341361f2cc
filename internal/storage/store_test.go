package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/shared"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, shared.Config{DBDriver: shared.DriverMemory})
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Ping(ctx))

	rv, err := st.Create(ctx, domain.ReviewInput{Title: "t", Content: "c", Rating: 3, Author: "a"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rv.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), shared.Config{DBDriver: "sqlite"})
	assert.Error(t, err)
}
