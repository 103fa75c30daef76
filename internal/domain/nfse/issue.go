package nfse

// Tipos de pendência da validação pré-emissão.
const (
	IssueError   = "erro"  // bloqueia a emissão
	IssueWarning = "aviso" // não bloqueia, apenas sinaliza
)

// Issue é uma pendência encontrada na validação pré-emissão. Calculada a cada
// passagem, nunca persistida; o chamador particiona por Kind para decidir se
// pode emitir e para renderizar ações de correção.
type Issue struct {
	Kind     string `json:"tipo"`
	Field    string `json:"campo"`
	Message  string `json:"mensagem"`
	Editable bool   `json:"editavel"`
}

// CanEmit devolve true quando nenhuma pendência bloqueante está presente.
// Avisos não impedem a emissão.
func CanEmit(issues []Issue) bool {
	for _, it := range issues {
		if it.Kind == IssueError {
			return false
		}
	}
	return true
}
