package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "0001_users.sql", files[0])
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestMigrationsCreateCoreTables(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)

	var all strings.Builder
	for _, f := range files {
		b, err := migrationsFS.ReadFile("migrations/" + f)
		require.NoError(t, err)
		all.Write(b)
	}
	schema := all.String()

	for _, table := range []string{
		"users", "password_resets", "specializations", "skills", "job_posts",
		"job_post_skills", "reviews", "listings", "listing_images", "opportunities",
		"apprentice_profiles", "notifications", "security_events",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

func TestVersionStripsExtension(t *testing.T) {
	assert.Equal(t, "0004_job_posts", version("0004_job_posts.sql"))
}
