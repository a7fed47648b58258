package viewer

// Array shader. Uniform names are part of the [Device] contract.
const (
	VertexShader = `#version 460
in vec2 aPos;
out vec2 vTexCoord;
uniform mat4 uMVP;
void main() {
	vTexCoord = vec2(aPos.x * 0.5 + 0.5, 0.5 - aPos.y * 0.5);
	gl_Position = uMVP * vec4(aPos, 0.0, 1.0);
}
` + "\x00"

	FragmentShader = `#version 460
in vec2 vTexCoord;
out vec4 fragColor;

uniform sampler2D uChannel0;
uniform sampler2D uChannel1;
uniform sampler2D uChannel2;
uniform sampler2D uGradient;
uniform int uNumChannels;
uniform bool uComposite;
uniform bool uColorMap;
uniform bool uSRGB;
uniform vec3 uValueScale;
uniform vec3 uRangeMin;
uniform vec3 uRangeMax;
uniform vec3 uGamma;
uniform vec3 uQuantization;

float adapt(float raw, int i) {
	float v = raw * uValueScale[i];
	float t = clamp((v - uRangeMin[i]) / (uRangeMax[i] - uRangeMin[i]), 0.0, 1.0);
	if (uGamma[i] > 0.0) {
		t = pow(t, uGamma[i]);
	}
	if (uQuantization[i] > 1.0) {
		t = min(floor(t * uQuantization[i]) / (uQuantization[i] - 1.0), 1.0);
	}
	return t;
}

vec3 toSRGB(vec3 linear) {
	vec3 lo = linear * 12.92;
	vec3 hi = 1.055 * pow(linear, vec3(1.0 / 2.4)) - 0.055;
	return mix(lo, hi, step(vec3(0.0031308), linear));
}

void main() {
	float t0 = adapt(texture(uChannel0, vTexCoord).r, 0);
	if (!uComposite) {
		vec3 c = uColorMap ? texture(uGradient, vec2(t0, 0.5)).rgb : toSRGB(vec3(t0));
		fragColor = vec4(c, 1.0);
		return;
	}
	vec3 c = vec3(t0);
	if (uNumChannels == 3) {
		c.g = adapt(texture(uChannel1, vTexCoord).r, 1);
		c.b = adapt(texture(uChannel2, vTexCoord).r, 2);
	}
	fragColor = vec4(uSRGB ? c : toSRGB(c), 1.0);
}
` + "\x00"
)
