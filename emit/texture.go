// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"github.com/gogpu/mir/ir"
)

// TextureObject returns a reference to the texture asset with the given name.
func (e *Emitter) TextureObject(texture string, samplerType ir.SamplerType) ir.ValueID {
	return e.Emit(ir.Value{
		Type: ir.Texture2D(),
		Kind: ir.TextureObject{Texture: texture, SamplerType: samplerType},
	})
}

// Parameter returns the value of a material parameter.
//
// Static switches are resolved now, honoring Options.StaticSwitchOverrides.
// Other parameters are registered in the module parameter table and read at
// runtime.
func (e *Emitter) Parameter(info ir.ParameterInfo, md ir.ParameterMetadata) ir.ValueID {
	if md.Kind == ir.ParameterStaticSwitch {
		on := md.Switch
		if override, ok := e.options.StaticSwitchOverrides[info.Name]; ok {
			on = override
		}
		return e.ConstantBool(on)
	}

	id, existed := e.module.FindOrAddParameter(info, md)
	if existed {
		if prev := e.module.Parameters[id].Metadata; prev.Kind != md.Kind {
			e.Errorf("Parameter '%s' was declared as a %s parameter and is now declared as a %s parameter.",
				info.Name, prev.Kind, md.Kind)
			return ir.PoisonValue
		}
	}
	return e.Emit(ir.Value{
		Type: md.Type(),
		Kind: ir.UniformParameter{Parameter: id, SamplerType: md.SamplerType},
	})
}

// TextureSampleParams describes the texture and coordinates of a texture read.
type TextureSampleParams struct {
	Texture  ir.ValueID
	TexCoord ir.ValueID

	SamplerSource ir.SamplerSourceMode

	// AutomaticViewMipBias applies the view mip bias, used for instance by
	// temporal upscalers rendering at a lower resolution.
	AutomaticViewMipBias bool
}

// samplerType returns the sampler type of a texture value.
func (e *Emitter) samplerType(texture ir.ValueID) ir.SamplerType {
	switch k := e.Value(texture).Kind.(type) {
	case ir.TextureObject:
		return k.SamplerType
	case ir.UniformParameter:
		return k.SamplerType
	}
	return ir.SamplerColor
}

// checkSampleParams validates p, converting the texture coordinates to float2.
func (e *Emitter) checkSampleParams(p *TextureSampleParams) bool {
	p.Texture = e.CheckIsTexture(p.Texture)
	p.TexCoord = e.Cast(e.CheckIsPrimitive(p.TexCoord), ir.Float2())
	return !e.anyNotValid(p.Texture, p.TexCoord)
}

func (e *Emitter) textureRead(p *TextureSampleParams, mode ir.TextureReadMode, mip, ddx, ddy ir.ValueID) ir.ValueID {
	if e.anyNotValid(p.Texture, p.TexCoord) {
		return ir.PoisonValue
	}
	for _, v := range [...]ir.ValueID{mip, ddx, ddy} {
		if v == ir.PoisonValue {
			return ir.PoisonValue
		}
	}
	return e.Emit(ir.Value{
		Type: ir.Float4(),
		Kind: ir.TextureRead{
			Texture:       p.Texture,
			TexCoord:      p.TexCoord,
			Mip:           mip,
			TexCoordDdx:   ddx,
			TexCoordDdy:   ddy,
			Mode:          mode,
			SamplerSource: p.SamplerSource,
			SamplerType:   e.samplerType(p.Texture),
		},
	})
}

// analyticalRead reads the texture with analytical derivatives of the
// texture coordinates, scaled by scale if it is set.
func (e *Emitter) analyticalRead(p *TextureSampleParams, scale ir.ValueID) ir.ValueID {
	ddx := e.derivative(p.TexCoord, ir.AxisX)
	ddy := e.derivative(p.TexCoord, ir.AxisY)
	if scale != ir.NoValue {
		ddx = e.Multiply(ddx, scale)
		ddy = e.Multiply(ddy, scale)
	}
	return e.textureRead(p, ir.ReadDerivatives, ir.NoValue, ddx, ddy)
}

// TextureSample samples the texture with automatic mip selection. Stages
// without hardware derivatives select the mip from analytical derivatives.
func (e *Emitter) TextureSample(p TextureSampleParams) ir.ValueID {
	if !e.checkSampleParams(&p) {
		return ir.PoisonValue
	}

	var hw, an ir.ValueID
	if p.AutomaticViewMipBias {
		bias := e.ExternalInput(ir.ViewMaterialTextureMipBias)
		hw = e.textureRead(&p, ir.ReadMipBias, bias, ir.NoValue, ir.NoValue)
		an = e.analyticalRead(&p, e.Exponential2(bias))
	} else {
		hw = e.textureRead(&p, ir.ReadMipAuto, ir.NoValue, ir.NoValue, ir.NoValue)
		an = e.analyticalRead(&p, ir.NoValue)
	}
	return e.hardwareOrAnalytical(ir.Float4(), hw, an)
}

// TextureSampleLevel samples the given mip level.
func (e *Emitter) TextureSampleLevel(p TextureSampleParams, level ir.ValueID) ir.ValueID {
	level = e.Cast(e.CheckIsPrimitive(level), ir.Float())
	if !e.checkSampleParams(&p) || !e.IsValid(level) {
		return ir.PoisonValue
	}
	if p.AutomaticViewMipBias {
		level = e.Add(level, e.ExternalInput(ir.ViewMaterialTextureMipBias))
	}
	return e.textureRead(&p, ir.ReadMipLevel, level, ir.NoValue, ir.NoValue)
}

// TextureSampleBias samples the texture with automatic mip selection offset
// by bias.
func (e *Emitter) TextureSampleBias(p TextureSampleParams, bias ir.ValueID) ir.ValueID {
	bias = e.Cast(e.CheckIsPrimitive(bias), ir.Float())
	if !e.checkSampleParams(&p) || !e.IsValid(bias) {
		return ir.PoisonValue
	}
	if p.AutomaticViewMipBias {
		bias = e.Add(bias, e.ExternalInput(ir.ViewMaterialTextureMipBias))
	}
	hw := e.textureRead(&p, ir.ReadMipBias, bias, ir.NoValue, ir.NoValue)
	an := e.analyticalRead(&p, e.Exponential2(bias))
	return e.hardwareOrAnalytical(ir.Float4(), hw, an)
}

// TextureSampleGrad samples the texture with explicit texture coordinate
// derivatives.
func (e *Emitter) TextureSampleGrad(p TextureSampleParams, ddx, ddy ir.ValueID) ir.ValueID {
	ddx = e.Cast(e.CheckIsPrimitive(ddx), ir.Float2())
	ddy = e.Cast(e.CheckIsPrimitive(ddy), ir.Float2())
	if !e.checkSampleParams(&p) || e.anyNotValid(ddx, ddy) {
		return ir.PoisonValue
	}
	if p.AutomaticViewMipBias {
		scale := e.ExternalInput(ir.ViewMaterialTextureDerivativeMultiply)
		ddx = e.Multiply(ddx, scale)
		ddy = e.Multiply(ddy, scale)
	}
	return e.textureRead(&p, ir.ReadDerivatives, ir.NoValue, ddx, ddy)
}

// TextureGather gathers one channel of the four texels around the
// coordinates. mode must be one of the gather read modes.
func (e *Emitter) TextureGather(p TextureSampleParams, mode ir.TextureReadMode) ir.ValueID {
	if !mode.IsGather() {
		panic("emit: TextureGather called with non-gather mode " + mode.String())
	}
	if !e.checkSampleParams(&p) {
		return ir.PoisonValue
	}
	return e.textureRead(&p, mode, ir.NoValue, ir.NoValue, ir.NoValue)
}
