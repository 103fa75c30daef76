// Package nfse contém as regras puras de emissão de NFS-e: ciclo de vida do
// registro fiscal, normalização de erros do gateway e validações de formato.
// Esta camada não tem dependências externas.
package nfse

// Estados do registro de NFS-e vinculado à ordem de serviço.
// O vocabulário segue o do gateway fiscal; "" significa nunca emitida.
const (
	StatusUnset      = ""
	StatusSending    = "enviando"
	StatusProcessing = "processando_autorizacao"
	StatusAuthorized = "autorizado"
	StatusError      = "erro_autorizacao"
	StatusRejected   = "rejeitado"
	StatusCancelled  = "cancelado"
)

// IsTerminal indica se o status é terminal (sem transição legítima posterior,
// exceto reprocessamento manual ou cancelamento de nota autorizada).
func IsTerminal(status string) bool {
	switch status {
	case StatusAuthorized, StatusError, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// AllowsTransition decide se uma atualização vinda do gateway (webhook ou
// consulta) pode sobrescrever o status atual. Regras:
//   - "autorizado" só transita para "cancelado"; nunca é rebaixado por erro
//     ou por um "processando_autorizacao" atrasado.
//   - Demais status terminais não aceitam estados intermediários atrasados
//     (entregas de webhook podem chegar fora de ordem ou duplicadas).
func AllowsTransition(current, next string) bool {
	if current == StatusAuthorized {
		return next == StatusCancelled
	}
	if IsTerminal(current) {
		switch next {
		case StatusProcessing, StatusSending, StatusUnset:
			return false
		}
	}
	return true
}

// Update carrega os campos de uma atualização de status vinda do gateway,
// aplicada ao registro persistido via escrita condicional por reference.
type Update struct {
	Status           string
	Number           string
	VerificationCode string
	URL              string
	PDFURL           string
	XMLURL           string
	ErrorMessage     string
	ErrorCode        string
}
