package handler

import "net/http"

// adminPageHandler serves the single-page review panel. The page drives the
// /admin endpoints with fetch calls and keeps no state of its own.
func adminPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(adminPageHTML))
	}
}

const adminPageHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>Admin - Aprovar cadastros</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 16px; background: #f5f6fa; }
    h1 { margin-bottom: 8px; }
    .toolbar { margin: 8px 0; display: flex; gap: 8px; align-items: center; }
    .status { margin: 8px 0; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background: #0b4d91; color: #fff; }
    tr:nth-child(even) { background: #f9f9f9; }
    button { padding: 6px 10px; background: #0b4d91; color: #fff; border: none; border-radius: 4px; cursor: pointer; }
    button:hover { background: #093f76; }
    button.danger { background: #a11b1b; }
    button.danger:hover { background: #7d1414; }
    input, select { padding: 6px; border: 1px solid #ccc; border-radius: 4px; }
    .tag { display: inline-block; padding: 2px 6px; border-radius: 4px; font-size: 12px; }
    .pending { background: #fff4e5; color: #8a4b00; }
    .approved { background: #e8fff5; color: #0b6b3a; }
    .block { background: #ffe8e8; color: #8a0b0b; }
  </style>
</head>
<body>
  <h1>Aprovação de cadastros</h1>
  <div class="toolbar">
    <select id="filter">
      <option value="all">Todos</option>
      <option value="pending" selected>Pendentes</option>
      <option value="approved">Aprovados</option>
      <option value="block">Bloqueados</option>
    </select>
    <input id="q" type="text" placeholder="Buscar por nome, email, CPF/CNPJ ou cidade" size="40" />
    <button onclick="load()">Buscar</button>
  </div>
  <div class="status" id="status">Carregando...</div>
  <table id="tbl">
    <thead>
      <tr>
        <th>Nome</th><th>Email</th><th>CPF/CNPJ</th><th>Cidade</th><th>Status</th><th>Ações</th>
      </tr>
    </thead>
    <tbody></tbody>
  </table>
  <script>
    async function action(path, id) {
      const r = await fetch(path, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ id })
      });
      if (r.ok) { load(); } else {
        const json = await r.json().catch(() => ({}));
        alert('Erro: ' + (json.error || r.statusText));
      }
    }

    async function load() {
      try {
        const filter = document.getElementById('filter').value;
        const q = document.getElementById('q').value;
        const params = new URLSearchParams({ status: filter });
        if (q) params.set('search', q);
        const res = await fetch('/admin/profiles?' + params.toString());
        const json = await res.json();
        if (!res.ok) throw new Error(json.error || res.statusText);
        let line = 'Cadastros: ' + (json.items?.length || 0);
        try {
          const sres = await fetch('/admin/stats');
          if (sres.ok) {
            const stats = await sres.json();
            line += ' | Registros recebidos: ' + stats.registrations +
              ' | Aprovados: ' + stats.approved + ' | Bloqueados: ' + stats.blocked;
          }
        } catch (_) { /* painel funciona sem as métricas */ }
        document.getElementById('status').textContent = line;
        const tbody = document.querySelector('#tbl tbody');
        tbody.innerHTML = '';
        (json.items || []).forEach(p => {
          const tr = document.createElement('tr');
          tr.innerHTML = ` + "`" + `
            <td>${p.full_name || '-'}</td>
            <td>${p.email || '-'}</td>
            <td>${p.cpf_cnpj || '-'}</td>
            <td>${p.city || '-'}</td>
            <td><span class="tag ${p.status || ''}">${p.status || ''}</span></td>
            <td>
              <button data-act="approve">Aprovar</button>
              <button data-act="block">Bloquear</button>
              <button data-act="delete" class="danger">Excluir</button>
            </td>
          ` + "`" + `;
          tr.querySelector('[data-act="approve"]').onclick = () => action('/admin/approve', p.id);
          tr.querySelector('[data-act="block"]').onclick = () => action('/admin/block', p.id);
          tr.querySelector('[data-act="delete"]').onclick = () => {
            if (confirm('Excluir este cadastro? A conta de acesso também será removida.')) {
              action('/admin/delete', p.id);
            }
          };
          tbody.appendChild(tr);
        });
      } catch (e) {
        document.getElementById('status').textContent = 'Erro: ' + e.message;
        console.error(e);
      }
    }
    document.getElementById('filter').onchange = load;
    load();
  </script>
</body>
</html>
`
