package glprobe

import (
	"fmt"
	"log/slog"
)

// LinkProgram compiles a vertex and fragment shader and links them into a
// program. Compile and link failures return a *SetupError carrying the
// driver's info log. The shader objects are released before returning.
func LinkProgram(dev Device, vertexSource, fragmentSource string) (Program, error) {
	vs, err := compileShader(dev, VertexStage, vertexSource)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(vs)

	fs, err := compileShader(dev, FragmentStage, fragmentSource)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(fs)

	program, err := create("create program", dev.CreateProgram)
	if err != nil {
		return 0, err
	}
	dev.AttachShader(program, vs)
	dev.AttachShader(program, fs)
	dev.LinkProgram(program)

	if !dev.ProgramLinked(program) {
		log := dev.ProgramInfoLog(program)
		dev.DeleteProgram(program)
		return 0, &SetupError{Op: "link program", Log: log}
	}

	Logger().Debug("program linked", slog.Uint64("program", uint64(program)))
	return program, nil
}

func compileShader(dev Device, stage ShaderStage, source string) (Shader, error) {
	op := fmt.Sprintf("compile %s shader", stage)

	shader, err := create(op, func() (Shader, error) { return dev.CreateShader(stage) })
	if err != nil {
		return 0, err
	}
	dev.ShaderSource(shader, source)
	dev.CompileShader(shader)

	if !dev.ShaderCompiled(shader) {
		log := dev.ShaderInfoLog(shader)
		dev.DeleteShader(shader)
		return 0, &SetupError{Op: op, Log: log}
	}
	return shader, nil
}
