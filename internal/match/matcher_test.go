package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniscan/internal/catalog"
	"miniscan/pkg/colorutil"
)

func record(brand, name, hex, category, finish, family string) catalog.Record {
	return catalog.Record{Name: &name, Brand: brand, Hex: hex, Category: category, Finish: finish, ColorFamily: family}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	paints, _ := catalog.Normalize([]catalog.Record{
		record("Citadel", "Khorne Red", "#5a0a08", "base", "matte", "red"),
		record("Citadel", "Mephiston Red", "#960c09", "base", "matte", "red"),
		record("Citadel", "Evil Sunz Scarlet", "#c01411", "layer", "matte", "red"),
		record("Citadel", "Wild Rider Red", "#ea2f28", "layer", "matte", "red"),
		record("Citadel", "Fire Dragon Bright", "#f45a50", "layer", "matte", "red"),
		record("Citadel", "Averland Sunset", "#fbb81c", "base", "matte", "yellow"),
		record("Citadel", "Abaddon Black", "#231f20", "base", "matte", "black"),
		record("Citadel", "Retributor Armour", "#c39e51", "base", "metallic", "gold"),
		record("Citadel", "Liberator Gold", "#d3b587", "layer", "metallic", "gold"),
		record("Citadel", "Leadbelcher", "#888d8f", "base", "metallic", "silver"),
		record("Citadel", "Nuln Oil", "#14100e", "shade", "matte", "black"),
		record("Citadel", "Carroburg Crimson", "#a8325f", "shade", "matte", "red"),
		record("Citadel", "Agrax Earthshade", "#5a573f", "shade", "matte", "brown"),
		record("Vallejo", "Flat Red", "#a50d15", "base", "matte", "red"),
		record("Vallejo", "Black Shade", "#1b1b1b", "wash", "matte", "black"),
	})
	return catalog.New(paints)
}

func testMatcher(t *testing.T) *Matcher {
	t.Helper()
	return NewMatcher(NewIndex(testCatalog(t)), catalog.DefaultWashTable(), DefaultParams())
}

func targetOf(hex string, metallic bool, family string) Target {
	rgb, _ := colorutil.ParseHex(hex)
	return Target{LAB: rgb.LAB(), Metallic: metallic, Family: family}
}

func TestBaseExact(t *testing.T) {
	m := testMatcher(t)

	got, err := m.Base(targetOf("#c01411", false, "Red"), "Citadel")
	require.NoError(t, err)
	assert.Equal(t, "Evil Sunz Scarlet", got.Paint.Name)
	assert.InDelta(t, 0, got.DeltaE, 0.01)
}

func TestBaseFinishPreference(t *testing.T) {
	m := testMatcher(t)

	gold, err := m.Base(targetOf("#c8a050", true, "Gold/Brass"), "Citadel")
	require.NoError(t, err)
	assert.Equal(t, "Retributor Armour", gold.Paint.Name)

	plain, err := m.Base(targetOf("#c8a050", false, "Yellow"), "Citadel")
	require.NoError(t, err)
	assert.False(t, plain.Paint.IsMetallic())
}

func TestBaseFallbacks(t *testing.T) {
	m := testMatcher(t)

	t.Run("brand has no metallics", func(t *testing.T) {
		got, err := m.Base(targetOf("#c8a050", true, "Gold/Brass"), "Vallejo")
		require.NoError(t, err)
		assert.Equal(t, "Citadel", got.Paint.Brand)
		assert.True(t, got.Paint.IsMetallic())
	})

	t.Run("unknown brand", func(t *testing.T) {
		got, err := m.Base(targetOf("#a50d15", false, "Red"), "Scale75")
		require.NoError(t, err)
		assert.Equal(t, "Flat Red", got.Paint.Name)
	})
}

func TestNoOpaquePaints(t *testing.T) {
	paints, _ := catalog.Normalize([]catalog.Record{
		record("Citadel", "Nuln Oil", "#14100e", "shade", "matte", "black"),
	})
	m := NewMatcher(NewIndex(catalog.New(paints)), catalog.DefaultWashTable(), DefaultParams())

	_, err := m.Triad(targetOf("#ff0000", false, "Red"), "Citadel")
	assert.ErrorIs(t, err, ErrNoMatch)
	_, err = m.Base(targetOf("#ff0000", false, "Red"), "Citadel")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestTriadNeverUsesWashesAndOrdersLightness(t *testing.T) {
	m := testMatcher(t)

	for r := 0; r <= 255; r += 51 {
		for g := 0; g <= 255; g += 51 {
			for b := 0; b <= 255; b += 51 {
				for _, metallic := range []bool{false, true} {
					for _, brand := range []string{"Citadel", "Vallejo", "Army Painter"} {
						rgb := colorutil.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
						triad, err := m.Triad(Target{LAB: rgb.LAB(), Metallic: metallic, Family: "Grey"}, brand)
						require.NoError(t, err)
						require.NotNil(t, triad.Base)

						assert.True(t, triad.Base.Paint.IsOpaque(), "base %s", triad.Base.Paint.Name)
						for _, alt := range triad.Base.Alternatives {
							assert.True(t, alt.Paint.IsOpaque(), "alternative %s", alt.Paint.Name)
							assert.Equal(t, brand, alt.Paint.Brand)
						}
						if triad.Layer != nil {
							assert.True(t, triad.Layer.Paint.IsOpaque(), "layer %s", triad.Layer.Paint.Name)
							assert.Greater(t, triad.Layer.Paint.LAB.L, triad.Base.Paint.LAB.L)
						}
						if triad.Highlight != nil {
							require.NotNil(t, triad.Layer)
							assert.True(t, triad.Highlight.Paint.IsOpaque())
							assert.Greater(t, triad.Highlight.Paint.LAB.L, triad.Layer.Paint.LAB.L)
						}
						if triad.Shade != nil {
							assert.True(t, triad.Shade.Paint.IsWash())
						}
					}
				}
			}
		}
	}
}

func TestTriadRedRecipe(t *testing.T) {
	m := testMatcher(t)

	triad, err := m.Triad(targetOf("#960c09", false, "Red"), "Citadel")
	require.NoError(t, err)

	assert.Equal(t, "Mephiston Red", triad.Base.Paint.Name)
	require.NotNil(t, triad.Layer)
	assert.Equal(t, "red", triad.Layer.Paint.Family)
	require.NotNil(t, triad.Highlight)
	require.NotNil(t, triad.Shade)
	assert.Equal(t, "Carroburg Crimson", triad.Shade.Paint.Name)
	assert.Equal(t, "Citadel", triad.Brand)
	for _, r := range triad.Roles() {
		assert.LessOrEqual(t, len(r.Match.Alternatives), DefaultParams().Alternatives, r.Name)
		for _, alt := range r.Match.Alternatives {
			assert.NotEqual(t, r.Match.Paint.ID, alt.Paint.ID, r.Name)
			assert.Equal(t, "Citadel", alt.Paint.Brand, r.Name)
		}
	}
	require.NotEmpty(t, triad.Shade.Alternatives)
	for _, alt := range triad.Shade.Alternatives {
		assert.True(t, alt.Paint.IsWash(), "shade alternative %s", alt.Paint.Name)
	}
}

func TestShadeResolution(t *testing.T) {
	m := testMatcher(t)

	t.Run("brand translation", func(t *testing.T) {
		got, ok := m.Shade(targetOf("#222222", false, "Black"), "Vallejo")
		require.True(t, ok)
		assert.Equal(t, "Black Shade", got.Paint.Name)
	})

	t.Run("metallic family", func(t *testing.T) {
		got, ok := m.Shade(targetOf("#c39e51", true, "Gold/Brass"), "Citadel")
		require.True(t, ok)
		assert.Equal(t, "Agrax Earthshade", got.Paint.Name)
	})

	t.Run("brand without washes", func(t *testing.T) {
		got, ok := m.Shade(targetOf("#222222", false, "Black"), "Army Painter")
		require.True(t, ok)
		assert.True(t, got.Paint.IsWash())
	})
}

func TestAlternatives(t *testing.T) {
	m := testMatcher(t)
	cat := m.Index().Catalog()

	t.Run("same kind, sorted by distance to the paint", func(t *testing.T) {
		scarlet, ok := cat.FindByName("Citadel", "Evil Sunz Scarlet", nil)
		require.True(t, ok)

		alts := m.Alternatives(scarlet, "Citadel", 3)
		require.Len(t, alts, 3)
		for i, a := range alts {
			assert.NotEqual(t, scarlet.ID, a.Paint.ID)
			assert.True(t, a.Paint.IsOpaque())
			assert.False(t, a.Paint.IsMetallic())
			assert.InDelta(t, colorutil.DeltaE2000(scarlet.LAB, a.Paint.LAB), a.DeltaE, 1e-9)
			if i > 0 {
				assert.GreaterOrEqual(t, a.DeltaE, alts[i-1].DeltaE)
			}
		}
	})

	t.Run("metallic only yields metallics", func(t *testing.T) {
		gold, ok := cat.FindByName("Citadel", "Retributor Armour", nil)
		require.True(t, ok)

		alts := m.Alternatives(gold, "Citadel", 5)
		require.Len(t, alts, 2)
		assert.Equal(t, "Liberator Gold", alts[0].Paint.Name)
		for _, a := range alts {
			assert.True(t, a.Paint.IsMetallic())
		}
	})

	t.Run("fallback base gets no foreign alternatives", func(t *testing.T) {
		triad, err := m.Triad(targetOf("#c8a050", true, "Gold/Brass"), "Vallejo")
		require.NoError(t, err)
		assert.Equal(t, "Citadel", triad.Base.Paint.Brand)
		assert.Empty(t, triad.Base.Alternatives)
	})

	t.Run("zero requested", func(t *testing.T) {
		assert.Empty(t, m.Alternatives(cat.Paint(0), "Citadel", 0))
	})
}

func TestIndexNearest(t *testing.T) {
	idx := NewIndex(testCatalog(t))
	assert.True(t, idx.HasOpaque())

	part := idx.opaquePartition("citadel", plainTexture)
	require.NotNil(t, part)
	ids := part.nearest(colorutil.RGB{R: 0xea, G: 0x2f, B: 0x28}.LAB(), 3)
	require.Len(t, ids, 3)
	assert.Equal(t, "Wild Rider Red", idx.Catalog().Paint(ids[0]).Name)

	assert.Nil(t, idx.opaquePartition("vallejo", metallicTexture))
	assert.NotNil(t, idx.washPartition("Vallejo"))
}
