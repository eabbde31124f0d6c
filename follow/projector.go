package follow

import (
	"encoding/binary"

	"github.com/virel-project/virel-social/address"
	"github.com/virel-project/virel-social/config"

	"github.com/zeebo/blake3"
)

// Label is how an address is displayed: its handle when it has one, otherwise its short address.
type Label struct {
	Address   address.Address
	Text      string
	AvatarURL string
	Pending   bool // the handle is still loading
}

// View is the follow state of a profile, as seen by a viewer.
type View struct {
	Skeleton bool  // one of the edge sets is still loading
	Err      error // one of the edge sets failed to load

	FollowerCount  int
	FollowingCount int
	IsFollowing    bool // the viewer follows the target
	IsSelf         bool

	FollowedBy []Label // first followers, in fetch order
	Others     int     // followers not in FollowedBy

	hasViewer bool
}

// ShowFollow reports whether the follow control is displayed.
func (v View) ShowFollow() bool {
	return v.controls() && !v.IsFollowing
}

// ShowUnfollow reports whether the unfollow control is displayed.
func (v View) ShowUnfollow() bool {
	return v.controls() && v.IsFollowing
}

func (v View) controls() bool {
	return v.hasViewer && v.Err == nil && !v.Skeleton && !v.IsSelf
}

// Project builds the view of target from its followers (to) and followings (from). viewer is
// address.INVALID_ADDRESS when nobody is signed in.
func Project(to, from Result, viewer, target address.Address) View {
	for _, r := range [2]Result{to, from} {
		if r.State() == Error {
			return View{Err: r.Err()}
		}
	}
	if to.State() == Loading || from.State() == Loading {
		return View{Skeleton: true}
	}

	followers := to.Edges()
	v := View{
		FollowerCount:  len(followers),
		FollowingCount: len(from.Edges()),
		IsSelf:         viewer == target,
		hasViewer:      viewer.IsValid(),
	}
	for _, e := range followers {
		if e.From == viewer {
			v.IsFollowing = true
			break
		}
	}

	n := min(len(followers), config.FOLLOWED_BY_PREVIEW)
	v.FollowedBy = make([]Label, 0, n)
	for _, e := range followers[:n] {
		v.FollowedBy = append(v.FollowedBy, NewLabel(e.From, e.FromHandle, e.FromPending))
	}
	v.Others = len(followers) - n

	return v
}

func NewLabel(addr address.Address, h *Handle, pending bool) Label {
	l := Label{
		Address:   addr,
		Text:      addr.Short(),
		AvatarURL: DefaultAvatar(addr),
		Pending:   pending,
	}
	if h != nil {
		if h.Handle != "" {
			l.Text = h.Handle
		}
		if h.AvatarURL != "" {
			l.AvatarURL = h.AvatarURL
		}
	}
	return l
}

// DefaultAvatar picks one of the stock avatars from the hash of addr.
func DefaultAvatar(addr address.Address) string {
	sum := blake3.Sum256(addr[:])
	return config.AvatarURL(int(binary.LittleEndian.Uint64(sum[:8]) % config.AVATAR_COUNT))
}
