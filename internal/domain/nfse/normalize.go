package nfse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxRawErrorLen limita o tamanho de mensagens derivadas de corpo bruto
// (páginas HTML, stack traces, respostas truncadas).
const maxRawErrorLen = 300

// Nomes de campos observados nas respostas de erro do gateway. O mesmo backend
// já devolveu pelo menos nove formatos distintos para "o mesmo tipo de falha",
// dependendo do estágio interno que rejeitou a requisição.
var (
	errorKeys   = []string{"erro", "error"}
	messageKeys = []string{"mensagem", "message", "mensagem_sefaz", "motivo", "descricao"}
	codeKeys    = []string{"codigo", "code"}
	listKeys    = []string{"erros", "errors"}
)

// Normalize extrai uma mensagem legível de um payload de erro com formato
// arbitrário. Devolve "" quando nenhuma estratégia reconhece o payload.
// Função pura e total: nunca entra em pânico, para qualquer entrada.
func Normalize(payload any) string {
	msg, _ := Extract(payload)
	return msg
}

// Extract aplica a lista ordenada de estratégias (da mais estruturada para a
// menos) e devolve mensagem e código, sempre separados: a mensagem nunca embute
// o código. Quem apresenta ao usuário formata uma única vez com Coded. A
// primeira estratégia que reconhecer o payload vence.
func Extract(payload any) (message, code string) {
	switch p := payload.(type) {
	case nil:
		return "", ""
	case string:
		return bounded(strings.TrimSpace(p)), ""
	case map[string]any:
		return extractFromObject(p)
	case []any:
		// Payload que já é a própria lista de sub-erros.
		return joinErrorList(p), ""
	default:
		return "", ""
	}
}

// NormalizeResponse trata um corpo de resposta bruto: tenta parse JSON e as
// estratégias estruturadas; se nada reconhecer, devolve um prefixo limitado do
// texto bruto. Nunca descarta silenciosamente uma resposta não-JSON.
func NormalizeResponse(body []byte) (message, code string) {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "", ""
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		if msg, c := Extract(v); msg != "" || c != "" {
			return msg, c
		}
	}
	return bounded(raw), ""
}

func extractFromObject(v map[string]any) (string, string) {
	// 1–3. Campo de erro dedicado: objeto com código, objeto só com mensagem,
	// ou string direta.
	for _, key := range errorKeys {
		switch e := v[key].(type) {
		case map[string]any:
			code := firstString(e, codeKeys)
			msg := firstString(e, messageKeys)
			if msg != "" || code != "" {
				return msg, code
			}
			// Objeto de erro que aninha a lista: {"erro": {"erros": [...]}}
			if msg := joinLists(e); msg != "" {
				return msg, ""
			}
		case string:
			if s := strings.TrimSpace(e); s != "" {
				return bounded(s), ""
			}
		}
	}

	// 4–5. Código e/ou mensagem no nível superior.
	code := firstString(v, codeKeys)
	if msg := firstString(v, messageKeys); msg != "" {
		return msg, code
	}

	// 6. Lista de sub-erros estruturados, no nível superior ou um nível abaixo.
	if msg := joinLists(v); msg != "" {
		return msg, ""
	}
	if body, ok := v["body"].(map[string]any); ok {
		if msg := joinLists(body); msg != "" {
			return msg, ""
		}
	}

	return "", ""
}

// joinLists procura uma lista de erros sob os nomes conhecidos.
func joinLists(v map[string]any) string {
	for _, key := range listKeys {
		if list, ok := v[key].([]any); ok && len(list) > 0 {
			if msg := joinErrorList(list); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// joinErrorList junta cada entrada como "codigo: descricao" (omitindo o código
// quando ausente), uma por linha.
func joinErrorList(list []any) string {
	var lines []string
	for _, item := range list {
		switch e := item.(type) {
		case map[string]any:
			code := firstString(e, codeKeys)
			msg := firstString(e, messageKeys)
			switch {
			case code != "" && msg != "":
				lines = append(lines, code+": "+msg)
			case msg != "":
				lines = append(lines, msg)
			case code != "":
				lines = append(lines, code)
			}
		case string:
			if s := strings.TrimSpace(e); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// firstString devolve o primeiro valor de texto não vazio entre as chaves,
// convertendo números (json.Unmarshal entrega float64 para códigos numéricos).
func firstString(v map[string]any, keys []string) string {
	for _, key := range keys {
		switch s := v[key].(type) {
		case string:
			if t := strings.TrimSpace(s); t != "" {
				return t
			}
		case float64:
			if s == float64(int64(s)) {
				return fmt.Sprintf("%d", int64(s))
			}
			return fmt.Sprintf("%v", s)
		case json.Number:
			return s.String()
		}
	}
	return ""
}

// Coded formata mensagem e código para exibição, no padrão "[código] mensagem".
// É o único ponto de formatação: Extract e NormalizeResponse devolvem os dois
// campos crus.
func Coded(code, msg string) string {
	switch {
	case code == "":
		return msg
	case msg == "":
		return "[" + code + "]"
	}
	return "[" + code + "] " + msg
}

func bounded(s string) string {
	r := []rune(s)
	if len(r) > maxRawErrorLen {
		return string(r[:maxRawErrorLen])
	}
	return s
}
