package render

// PostPipeline groups the stages run between rendering and hand-off.
// Clamp always runs last regardless of what is configured here.
type PostPipeline struct {
	Brightness func([]Color, *Uniforms)
	Limiter    func([]Color, *Uniforms)
}

// DefaultPost scales by global brightness then applies the limiter.
func DefaultPost() PostPipeline {
	return PostPipeline{
		Brightness: ApplyBrightness,
		Limiter:    DefaultLimiter,
	}
}

// ApplyBrightness multiplies the frame by u.Brightness when it is in (0,1).
func ApplyBrightness(buf []Color, u *Uniforms) {
	if u == nil || u.Brightness <= 0 || u.Brightness >= 1 {
		return
	}
	s := u.Brightness
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}

// Clamp255 clamps every channel into [0,255]. This is the last stage before
// a frame is handed to a Driver.
func Clamp255(buf []Color) {
	for i := range buf {
		buf[i] = ClampColor(buf[i], 0, 255)
	}
}

// DefaultLimiter applies a two-stage limiter:
// 1) Per-LED "white cap": scales (R,G,B) so R+G+B <= WhiteCap*255 (default 3.0 = no cap)
// 2) Global current budget: estimates current and scales the whole frame to stay under Budget_mA
//
// Parameters (read from uniforms.Params):
//   - "WhiteCap" (sum of channels cap as a fraction of full scale, default 3.0)
//   - "LEDChan_mA" (mA per color channel at full scale; WS2812 ≈ 20, default 20)
//   - "Budget_mA" (global budget in mA; if 0 or missing, only the white cap runs)
//   - "LimiterKnee" (fraction of budget where soft limiting begins; default 0.9)
func DefaultLimiter(buf []Color, u *Uniforms) {
	if u == nil {
		return
	}
	whiteCap := u.Param("WhiteCap", 3.0)
	chanmA := u.Param("LEDChan_mA", 20)
	budget := u.Param("Budget_mA", 0)
	knee := u.Param("LimiterKnee", 0.9)
	if whiteCap <= 0 {
		whiteCap = 3.0
	}
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}

	wc := whiteCap * 255
	for i := range buf {
		s := buf[i].R + buf[i].G + buf[i].B
		if s > wc && s > 0 {
			buf[i] = buf[i].Scale(wc / s)
		}
	}

	if budget <= 0 {
		return
	}
	total := EstimateCurrent(buf, chanmA)
	if total <= 0 {
		return
	}
	ratio := total / budget
	if ratio <= 1.0 {
		if ratio <= knee {
			return
		}
		// map ratio in [knee,1] to scale in [1, budget/total]
		minS := budget / total
		t := (ratio - knee) / (1.0 - knee)
		applyGlobalScale(buf, 1.0-t*(1.0-minS))
		return
	}
	applyGlobalScale(buf, budget/total)
}

// EstimateCurrent returns the frame current in mA, assuming chanmA per
// channel at 255 and linear draw below that.
func EstimateCurrent(buf []Color, chanmA float64) float64 {
	var total float64
	for i := range buf {
		total += (Clamp(buf[i].R, 0, 255) + Clamp(buf[i].G, 0, 255) + Clamp(buf[i].B, 0, 255)) / 255 * chanmA
	}
	return total
}

func applyGlobalScale(buf []Color, s float64) {
	if s >= 1.0 {
		return
	}
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}
