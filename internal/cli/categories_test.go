package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_List(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &CategoriesCommand{globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEngine(engine))
	})

	assert.Contains(t, output, "browsing")
	assert.Contains(t, output, "miscellaneous")
	assert.Contains(t, output, "builtin")
	assert.Contains(t, output, "chrome")
}

func TestCategories_CreateAndDelete(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	create := &CategoriesCommand{
		Create:      "Deep Work",
		Description: "focus time",
		Color:       "#112233",
		globals:     &GlobalFlags{},
		version:     "dev",
	}
	output := captureOutput(t, func() {
		require.NoError(t, create.executeWithEngine(engine))
	})
	assert.Contains(t, output, "created")
	assert.Contains(t, output, "deep-work")

	del := &CategoriesCommand{Delete: "deep-work", globals: &GlobalFlags{}, version: "dev"}
	output = captureOutput(t, func() {
		require.NoError(t, del.executeWithEngine(engine))
	})
	assert.Contains(t, output, "deleted")
}

func TestCategories_DeleteBuiltinFails(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &CategoriesCommand{Delete: "browsing", globals: &GlobalFlags{}, version: "dev"}
	err := cmd.executeWithEngine(engine)
	require.Error(t, err)
}

func TestCategories_MutuallyExclusiveFlags(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &CategoriesCommand{
		Create:  "A",
		Delete:  "b",
		globals: &GlobalFlags{},
		version: "dev",
	}
	err := cmd.executeWithEngine(engine)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestAssign_OverridesCategory(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &AssignCommand{App: "Code", Category: "development", globals: &GlobalFlags{}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEngine(engine))
	})
	assert.Contains(t, output, "Assigned Code to development")
}

func TestAssign_UnknownCategory(t *testing.T) {
	engine, _, _, _ := setupCLITest(t)

	cmd := &AssignCommand{App: "code", Category: "ghost", globals: &GlobalFlags{}, version: "dev"}
	err := cmd.executeWithEngine(engine)
	require.Error(t, err)
}
