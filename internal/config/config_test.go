package config

import (
	"testing"

	"github.com/flexprice/notebilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, GetDefaultConfig().Validate())

	s3Store := GetDefaultConfig()
	s3Store.Recognition.Store = types.SnapshotStoreS3
	assert.Error(t, s3Store.Validate())
	s3Store.S3.Enabled = true
	assert.NoError(t, s3Store.Validate())

	fileStore := GetDefaultConfig()
	fileStore.Recognition.Store = types.SnapshotStoreFile
	assert.Error(t, fileStore.Validate())

	badDay := GetDefaultConfig()
	badDay.Billing.ReceiptDay = 31
	assert.Error(t, badDay.Validate())

	noDSN := GetDefaultConfig()
	noDSN.Sentry.Enabled = true
	assert.Error(t, noDSN.Validate())
	noDSN.Sentry.DSN = "https://key@sentry.example.com/1"
	assert.NoError(t, noDSN.Validate())

	noServer := GetDefaultConfig()
	noServer.Pyroscope.Enabled = true
	assert.Error(t, noServer.Validate())
}

func TestGetDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "billing", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=billing sslmode=disable", c.GetDSN())
}
