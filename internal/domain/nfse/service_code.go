package nfse

import "strings"

// serviceCodeLen é o tamanho exato do código de serviço municipal após a
// remoção de separadores ("01.01.01" -> "010101").
const serviceCodeLen = 6

// NormalizeServiceCode remove tudo que não é dígito do código de serviço
// municipal. O formato de entrada varia por prefeitura (com pontos, traços ou
// já compactado).
func NormalizeServiceCode(code string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
}

// ValidServiceCode verifica a invariante estrita de formato: exatamente seis
// dígitos numéricos após a normalização. Não consulta nenhuma tabela da
// prefeitura; é só a regra de forma exigida pelo gateway.
func ValidServiceCode(code string) bool {
	return len(NormalizeServiceCode(code)) == serviceCodeLen
}
