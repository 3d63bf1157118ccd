package viewsync

import (
	"fmt"

	"github.com/udisondev/rs2go/internal/constants"
	"github.com/udisondev/rs2go/internal/gameserver/packet"
	"github.com/udisondev/rs2go/internal/model"
)

// block is one optional attribute sub-block: the dirty flag that enables it,
// its bit in the wire mask and its payload writer.
type block[T model.Syncable] struct {
	flag   model.UpdateFlag
	bit    int
	name   string
	encode func(b *packet.Buffer, actor T)
}

// blockTable is an ordered list of blocks. Sub-blocks carry no tag or length,
// so the table order is the wire order.
type blockTable[T model.Syncable] struct {
	blocks []block[T]
	// extended tables write masks >= MaskShortThreshold as two bytes.
	extended bool
	// reserve is the largest block the table can produce, in bytes.
	reserve int
}

// Mask returns the wire mask for flags, without the extension bit.
func (t *blockTable[T]) Mask(flags model.UpdateFlag) int {
	m := 0
	for _, blk := range t.blocks {
		if flags&blk.flag != 0 {
			m |= blk.bit
		}
	}
	return m
}

// Write appends the mask and every enabled sub-block in table order.
func (t *blockTable[T]) Write(b *packet.Buffer, actor T, flags model.UpdateFlag) {
	m := t.Mask(flags)
	if t.extended && m >= constants.MaskShortThreshold {
		b.WriteShortT(m|constants.MaskExtended, packet.TransformNone, packet.LittleEndian)
	} else {
		b.WriteByteT(m, packet.TransformNone)
	}

	for _, blk := range t.blocks {
		if flags&blk.flag != 0 {
			blk.encode(b, actor)
		}
	}
}

// Decode returns the flags enabled by a wire mask in table order.
func (t *blockTable[T]) Decode(mask int) []model.UpdateFlag {
	var out []model.UpdateFlag
	for _, blk := range t.blocks {
		if mask&blk.bit != 0 {
			out = append(out, blk.flag)
		}
	}
	return out
}

// ReadMask reads a mask as Write produced it.
func (t *blockTable[T]) ReadMask(r *packet.Reader) (int, error) {
	lo, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("reading mask: %w", err)
	}
	m := int(lo)
	if t.extended && m&constants.MaskExtended != 0 {
		hi, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("reading extended mask: %w", err)
		}
		m = (m | int(hi)<<8) &^ constants.MaskExtended
	}
	return m, nil
}

// Flags returns the table's flags in wire order.
func (t *blockTable[T]) Flags() []model.UpdateFlag {
	out := make([]model.UpdateFlag, len(t.blocks))
	for i, blk := range t.blocks {
		out[i] = blk.flag
	}
	return out
}

// PlayerBlocks is the player attribute table.
var PlayerBlocks = &blockTable[*model.Player]{
	extended: true,
	reserve:  300,
	blocks: []block[*model.Player]{
		{model.FlagGraphic, constants.PlayerMaskGraphic, "graphic", encodePlayerGraphic},
		{model.FlagAnimation, constants.PlayerMaskAnimation, "animation", encodePlayerAnimation},
		{model.FlagForcedChat, constants.PlayerMaskForcedChat, "forced chat", encodeForcedChat[*model.Player]},
		{model.FlagChat, constants.PlayerMaskChat, "chat", encodePlayerChat},
		{model.FlagAppearance, constants.PlayerMaskAppearance, "appearance", encodePlayerAppearance},
		{model.FlagFaceEntity, constants.PlayerMaskFaceEntity, "face entity", encodePlayerFaceEntity},
		{model.FlagFaceCoordinate, constants.PlayerMaskFaceCoord, "face coordinate", encodePlayerFaceCoordinate},
		{model.FlagHit, constants.PlayerMaskHit, "hit", encodePlayerHit},
		{model.FlagHit2, constants.PlayerMaskHit2, "hit2", encodePlayerHit2},
	},
}

// NpcBlocks is the NPC attribute table. Same concepts, different bits and order.
var NpcBlocks = &blockTable[*model.Npc]{
	reserve: 128,
	blocks: []block[*model.Npc]{
		{model.FlagAnimation, constants.NpcMaskAnimation, "animation", encodeNpcAnimation},
		{model.FlagHit2, constants.NpcMaskHit2, "hit2", encodeNpcHit2},
		{model.FlagGraphic, constants.NpcMaskGraphic, "graphic", encodeNpcGraphic},
		{model.FlagFaceEntity, constants.NpcMaskFaceEntity, "face entity", encodeNpcFaceEntity},
		{model.FlagForcedChat, constants.NpcMaskForcedChat, "forced chat", encodeForcedChat[*model.Npc]},
		{model.FlagHit, constants.NpcMaskHit, "hit", encodeNpcHit},
		{model.FlagFaceCoordinate, constants.NpcMaskFaceCoord, "face coordinate", encodeNpcFaceCoordinate},
	},
}

// selfExcluded are the player flags never echoed to the player itself.
const selfExcluded = model.FlagChat

func encodeForcedChat[T model.Syncable](b *packet.Buffer, actor T) {
	b.WriteString(actor.Base().ForcedChatPayload())
}

// Player sub-blocks.

func encodePlayerGraphic(b *packet.Buffer, p *model.Player) {
	g := p.GraphicPayload()
	b.WriteShortT(g.ID, packet.TransformNone, packet.LittleEndian)
	b.WriteInt(int32(g.Height<<16|g.Delay&0xFFFF), packet.BigEndian)
}

func encodePlayerAnimation(b *packet.Buffer, p *model.Player) {
	a := p.AnimationPayload()
	b.WriteShortT(a.ID, packet.TransformNone, packet.LittleEndian)
	b.WriteByteT(a.Delay, packet.TransformNegate)
}

func encodePlayerChat(b *packet.Buffer, p *model.Player) {
	msg := p.ChatPayload()
	b.WriteShortT(msg.Colour<<8|msg.Effects&0xFF, packet.TransformNone, packet.LittleEndian)
	b.WriteByteT(p.Rights(), packet.TransformNone)
	b.WriteByteT(len(msg.Text), packet.TransformNegate)
	b.WriteBytesReverse(msg.Text)
}

var appearancePool = packet.NewPool(64)

func encodePlayerAppearance(b *packet.Buffer, p *model.Player) {
	a := p.Appearance()

	tmp := appearancePool.Get()
	defer appearancePool.Put(tmp)

	tmp.WriteByteT(a.Gender, packet.TransformNone)
	tmp.WriteByteT(a.HeadIcon, packet.TransformNone)
	for _, v := range a.Slots {
		if v == 0 {
			tmp.WriteByteT(0, packet.TransformNone)
			continue
		}
		tmp.WriteShort(v)
	}
	for _, c := range a.Colours {
		tmp.WriteByteT(c, packet.TransformNone)
	}
	for _, anim := range a.Anims {
		tmp.WriteShort(anim)
	}
	tmp.WriteLong(p.NameHash())
	tmp.WriteByteT(a.CombatLevel, packet.TransformNone)
	tmp.WriteShort(a.SkillLevel)

	b.WriteByteT(tmp.Len(), packet.TransformNegate)
	b.WriteBytes(tmp.Bytes())
}

func encodePlayerFaceEntity(b *packet.Buffer, p *model.Player) {
	b.WriteShortT(p.FaceEntityPayload(), packet.TransformNone, packet.LittleEndian)
}

func encodePlayerFaceCoordinate(b *packet.Buffer, p *model.Player) {
	pos := p.FaceCoordinatePayload()
	b.WriteShortT(pos.X*2+1, packet.TransformAdd, packet.LittleEndian)
	b.WriteShortT(pos.Y*2+1, packet.TransformNone, packet.LittleEndian)
}

func encodePlayerHit(b *packet.Buffer, p *model.Player) {
	hit, hp, maxHp := p.TakeHit(0)
	b.WriteByteT(hit.Damage, packet.TransformNone)
	b.WriteByteT(int(hit.Type), packet.TransformAdd)
	b.WriteByteT(hp, packet.TransformNegate)
	b.WriteByteT(maxHp, packet.TransformNone)
}

func encodePlayerHit2(b *packet.Buffer, p *model.Player) {
	hit, hp, maxHp := p.TakeHit(1)
	b.WriteByteT(hit.Damage, packet.TransformNone)
	b.WriteByteT(int(hit.Type), packet.TransformSubtract)
	b.WriteByteT(hp, packet.TransformNone)
	b.WriteByteT(maxHp, packet.TransformNegate)
}

// NPC sub-blocks.

func encodeNpcAnimation(b *packet.Buffer, n *model.Npc) {
	a := n.AnimationPayload()
	b.WriteShortT(a.ID, packet.TransformNone, packet.LittleEndian)
	b.WriteByteT(a.Delay, packet.TransformNone)
}

func encodeNpcHit2(b *packet.Buffer, n *model.Npc) {
	hit, hp, maxHp := n.TakeHit(1)
	b.WriteByteT(hit.Damage, packet.TransformAdd)
	b.WriteByteT(int(hit.Type), packet.TransformNegate)
	b.WriteByteT(hp, packet.TransformAdd)
	b.WriteByteT(maxHp, packet.TransformNone)
}

func encodeNpcGraphic(b *packet.Buffer, n *model.Npc) {
	g := n.GraphicPayload()
	b.WriteShort(g.ID)
	b.WriteInt(int32(g.Height<<16|g.Delay&0xFFFF), packet.BigEndian)
}

func encodeNpcFaceEntity(b *packet.Buffer, n *model.Npc) {
	b.WriteShort(n.FaceEntityPayload())
}

func encodeNpcHit(b *packet.Buffer, n *model.Npc) {
	hit, hp, maxHp := n.TakeHit(0)
	b.WriteByteT(hit.Damage, packet.TransformNegate)
	b.WriteByteT(int(hit.Type), packet.TransformSubtract)
	b.WriteByteT(hp, packet.TransformNegate)
	b.WriteByteT(maxHp, packet.TransformNegate)
}

func encodeNpcFaceCoordinate(b *packet.Buffer, n *model.Npc) {
	pos := n.FaceCoordinatePayload()
	b.WriteShortT(pos.X*2+1, packet.TransformNone, packet.LittleEndian)
	b.WriteShortT(pos.Y*2+1, packet.TransformNone, packet.LittleEndian)
}
