// Package application contém os casos de uso (regras de aplicação) do pipeline
// de admissão: decisão de cota por janela fixa, verificação de método/tamanho,
// validação de schema com sanitização e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Admit(key) retorna uma Decision (allow/deny + headers informativos).
package application
