package tier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTiers = []Tier{Large, Small, Critical}

var routingLists = []string{
	"large_x,x_critical,y_infer,z",
	"her2.critical.infer,her2.infer,large.her2.infer",
	"unet_gpu_worker_critical,unet_gpu_worker,large_unet_gpu_worker",
	"yolo.gpu.worker,large.yolo.gpu.worker,yolo.gpu.worker.critical",
	"unet.mask.infer",
	"large.critical.infer",
	"",
	",,",
}

// =============================================================================
// FromFlags Tests
// =============================================================================

func TestFromFlags_None(t *testing.T) {
	got, err := FromFlags(false, false, false)
	require.NoError(t, err)
	assert.Equal(t, Unspecified, got)
}

func TestFromFlags_Single(t *testing.T) {
	got, err := FromFlags(true, false, false)
	require.NoError(t, err)
	assert.Equal(t, Large, got)

	got, err = FromFlags(false, true, false)
	require.NoError(t, err)
	assert.Equal(t, Small, got)

	got, err = FromFlags(false, false, true)
	require.NoError(t, err)
	assert.Equal(t, Critical, got)
}

func TestFromFlags_Conflicting(t *testing.T) {
	_, err := FromFlags(true, false, true)
	assert.ErrorIs(t, err, ErrConflictingTiers)

	_, err = FromFlags(true, true, true)
	assert.ErrorIs(t, err, ErrConflictingTiers)
}

func TestRequire_NoneIsError(t *testing.T) {
	_, err := Require(false, false, false)
	assert.ErrorIs(t, err, ErrNoTier)
}

func TestRequire_Single(t *testing.T) {
	got, err := Require(false, true, false)
	require.NoError(t, err)
	assert.Equal(t, Small, got)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "all", Unspecified.String())
	assert.Equal(t, "critical", Critical.String())
}

// =============================================================================
// Classify Tests
// =============================================================================

func TestClassify_Rules(t *testing.T) {
	assert.Equal(t, []Tier{Large}, Classify("large_x").Tiers())
	assert.Equal(t, []Tier{Critical}, Classify("x_critical").Tiers())
	assert.Equal(t, []Tier{Small}, Classify("y_infer").Tiers())
	assert.Empty(t, Classify("z").Tiers())
}

func TestClassify_Overlap(t *testing.T) {
	s := Classify("large.critical.infer")
	assert.True(t, s.Has(Large))
	assert.True(t, s.Has(Critical))
	assert.False(t, s.Has(Small))
}

func TestClassify_LargeMustBePrefix(t *testing.T) {
	s := Classify("her2.large.infer")
	assert.False(t, s.Has(Large))
	assert.False(t, s.Has(Small), "small excludes any token mentioning large")
}

func TestSet_UnspecifiedAlwaysMember(t *testing.T) {
	assert.True(t, Set(0).Has(Unspecified))
}

// =============================================================================
// FilterRoutingList Tests
// =============================================================================

func TestFilterRoutingList_Examples(t *testing.T) {
	const in = "large_x,x_critical,y_infer,z"
	assert.Equal(t, "large_x", FilterRoutingList(in, Large))
	assert.Equal(t, "x_critical", FilterRoutingList(in, Critical))
	assert.Equal(t, "y_infer", FilterRoutingList(in, Small))
}

func TestFilterRoutingList_CatalogKeys(t *testing.T) {
	const keys = "her2.critical.infer,her2.infer,large.her2.infer"
	assert.Equal(t, "large.her2.infer", FilterRoutingList(keys, Large))
	assert.Equal(t, "her2.critical.infer", FilterRoutingList(keys, Critical))
	assert.Equal(t, "her2.infer", FilterRoutingList(keys, Small))
}

func TestFilterRoutingList_NoSurvivorsIsEmpty(t *testing.T) {
	assert.Equal(t, "", FilterRoutingList("unet_mask", Large))
	assert.Equal(t, "", FilterRoutingList("yolo_gpu_worker,yolo_gpu_worker_critical", Small))
}

func TestFilterRoutingList_Identity(t *testing.T) {
	for _, l := range routingLists {
		assert.Equal(t, l, FilterRoutingList(l, Unspecified))
	}
}

func TestFilterRoutingList_Subsequence(t *testing.T) {
	for _, l := range routingLists {
		src := strings.Split(l, ",")
		for _, tr := range allTiers {
			got := FilterRoutingList(l, tr)
			if got == "" {
				continue
			}
			i := 0
			for _, tok := range strings.Split(got, ",") {
				for i < len(src) && src[i] != tok {
					i++
				}
				require.Less(t, i, len(src), "%q not an ordered subset of %q for %s", got, l, tr)
				i++
			}
		}
	}
}

func TestFilterRoutingList_Idempotent(t *testing.T) {
	for _, l := range routingLists {
		for _, tr := range allTiers {
			once := FilterRoutingList(l, tr)
			assert.Equal(t, once, FilterRoutingList(once, tr), "list %q tier %s", l, tr)
		}
	}
}

// =============================================================================
// IsRoutingKey Tests
// =============================================================================

func TestIsRoutingKey(t *testing.T) {
	assert.True(t, IsRoutingKey("celery_key_her2"))
	assert.True(t, IsRoutingKey("CELERY_QUEUE_MASK_IMG"))
	assert.True(t, IsRoutingKey("Celery_Queue"))
	assert.False(t, IsRoutingKey("NVIDIA_DEVICE"))
	assert.False(t, IsRoutingKey("VAULT_ADDR"))
	assert.False(t, IsRoutingKey("environment"))
}
